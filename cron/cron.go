// Package cron provides chain-based task scheduling on top of
// robfig/cron with middleware support.
//
// Tasks added under one name run sequentially; if a task fails, the
// remaining tasks in its chain are not executed. Every task runs through
// the recovery and logging middlewares so a panicking task cannot take
// down the process.
package cron

import (
	"context"

	"github.com/dailyyoga/ttlcache/logger"
)

// Task is the interface for a scheduled task
// Each task must have a unique name and implement the Run method
type Task interface {
	// Name returns the identifier for this task, used for logging
	Name() string
	// Run executes the task with the given context
	Run(ctx context.Context) error
}

// Cron is the interface for managing scheduled task chains
type Cron interface {
	// Start begins the cron scheduler
	Start()
	// Close stops the cron scheduler and waits for running jobs to complete
	Close()
	// AddTasks adds a chain of tasks to be executed according to the
	// cron spec. The spec follows the standard cron format with support
	// for seconds (6 fields). Tasks are executed sequentially, and if
	// any task fails, the chain is aborted
	AddTasks(name string, spec string, tasks ...Task) error
}

// NewCron creates a new cron manager with the given logger and middlewares
// Middlewares are applied to all tasks in the order they are provided,
// after the built-in recovery and logging middlewares
func NewCron(log logger.Logger, mws ...Middleware) Cron {
	defaultMws := []Middleware{
		recoveryMiddleware(log),
		loggingMiddleware(log),
	}
	return newCronManager(log, append(defaultMws, mws...)...)
}

// TaskFunc adapts a plain function to the Task interface
func TaskFunc(name string, fn func(ctx context.Context) error) Task {
	return &wrappedTask{name: name, exec: fn}
}
