// Package jobs runs best-effort background work on a fixed pool of workers
// fed by a bounded in-memory queue. Jobs are not persisted and failed jobs
// are not retried; callers that need an audit trail record outcomes themselves.
package jobs
