package cron

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dailyyoga/ttlcache/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	log, err := logger.New(&logger.Config{
		Level:    "debug",
		Encoding: "console",
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func TestAddTasks_NoTasks(t *testing.T) {
	c := NewCron(newTestLogger(t))
	if err := c.AddTasks("empty", "* * * * * *"); err != ErrNoTasks {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}

func TestAddTasks_InvalidSpec(t *testing.T) {
	c := NewCron(newTestLogger(t))
	task := TaskFunc("noop", func(ctx context.Context) error { return nil })
	if err := c.AddTasks("bad", "not a spec", task); err == nil {
		t.Fatal("expected error for invalid spec, got nil")
	}
}

func TestCron_RunsTask(t *testing.T) {
	c := NewCron(newTestLogger(t))

	var runs atomic.Int32
	task := TaskFunc("count", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	if err := c.AddTasks("counter", "* * * * * *", task); err != nil {
		t.Fatalf("AddTasks failed: %v", err)
	}

	c.Start()
	defer c.Close()

	time.Sleep(2500 * time.Millisecond)

	if runs.Load() < 2 {
		t.Errorf("expected at least 2 runs of a per-second task, got %d", runs.Load())
	}
}

func TestCron_ChainAbortsOnFailure(t *testing.T) {
	c := NewCron(newTestLogger(t))

	var secondRan atomic.Bool
	failing := TaskFunc("failing", func(ctx context.Context) error {
		return fmt.Errorf("boom")
	})
	second := TaskFunc("second", func(ctx context.Context) error {
		secondRan.Store(true)
		return nil
	})

	if err := c.AddTasks("chain", "* * * * * *", failing, second); err != nil {
		t.Fatalf("AddTasks failed: %v", err)
	}

	c.Start()
	defer c.Close()

	time.Sleep(1500 * time.Millisecond)

	if secondRan.Load() {
		t.Error("second task should not run after the first one fails")
	}
}

func TestCron_RecoversFromPanic(t *testing.T) {
	c := NewCron(newTestLogger(t))

	var afterPanic atomic.Bool
	panicking := TaskFunc("panicking", func(ctx context.Context) error {
		panic("task panic")
	})

	if err := c.AddTasks("panic-chain", "* * * * * *", panicking); err != nil {
		t.Fatalf("AddTasks failed: %v", err)
	}
	if err := c.AddTasks("ok-chain", "* * * * * *", TaskFunc("ok", func(ctx context.Context) error {
		afterPanic.Store(true)
		return nil
	})); err != nil {
		t.Fatalf("AddTasks failed: %v", err)
	}

	c.Start()
	defer c.Close()

	time.Sleep(1500 * time.Millisecond)

	if !afterPanic.Load() {
		t.Error("scheduler should keep running other chains after a panic")
	}
}
