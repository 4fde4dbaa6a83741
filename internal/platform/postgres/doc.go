// Package postgres implements the account, task and notification stores
// on PostgreSQL through database/sql and the pgx driver. Schema migrations
// are embedded in the binary and applied with goose. Driver errors are
// translated into the sentinels of the store package.
package postgres
