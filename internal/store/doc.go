// Package store defines the persistence interfaces for accounts, tasks and
// notification records, the errors they return, and transaction helpers
// shared by the implementations.
package store
