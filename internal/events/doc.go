// Package events provides a small in-process event bus.
//
// Services emit events without knowing which handlers will process them.
// The task service emits a task.assigned event after a task is stored; the
// notification handler turns it into a background dispatch job.
//
// The primary components are:
//   - Event: a typed envelope with a JSON payload
//   - EventHandler: interface for components that consume events
//   - EventEmitter: interface for components that publish events
package events
