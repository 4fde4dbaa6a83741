// Package api contains the HTTP handlers for logging in, provisioning
// accounts, creating and listing tasks, and completing them with an optional
// photo. Handlers decode and validate requests, call the account and task
// services, and translate service errors into status codes and safe messages.
package api
