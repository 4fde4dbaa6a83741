// Package notify tells assignees about new tasks. Rendering, sending and
// recording happen on a background worker; a failed send is logged and
// recorded but never affects the request that created the task.
package notify
