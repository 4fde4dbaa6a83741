package notify

import "errors"

// ErrDispatchFailed wraps any failure to deliver a message. It is logged and
// recorded, never returned to API callers.
var ErrDispatchFailed = errors.New("notification dispatch failed")

// ErrNoRecipient is returned when a task carries no assignee phone number.
var ErrNoRecipient = errors.New("task has no recipient")
