// Package service contains the application-specific use cases and business
// logic. It orchestrates domain objects and the stores defined in
// internal/store to authenticate accounts and run the task lifecycle.
//
// Services receive their dependencies through constructors and never depend
// on infrastructure implementations. Expected failures are reported with the
// sentinel errors in errors.go (or the store and domain sentinels they wrap);
// the API layer maps them to HTTP status codes.
package service
