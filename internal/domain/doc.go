// Package domain contains accounts, tasks and notification records together
// with the rules that govern them: who may be assigned work, when a task
// specification is valid, and how completion happens exactly once.
package domain
