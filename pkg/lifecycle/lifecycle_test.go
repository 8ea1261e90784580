package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/pitchcraft/pkg/lifecycle"
)

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Fatal("should not be ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Fatal("should be ready after WaitForStartup")
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if lc.Ready() {
		t.Error("should not be ready after Shutdown")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() { count.Add(1) })
	}
	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestWaitForStartupContext(t *testing.T) {
	lc := lifecycle.New()
	release := make(chan struct{})
	lc.OnStartup(func() { <-release })

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	err := lc.WaitForStartupContext(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error: got %v, want deadline exceeded", err)
	}
	if lc.Ready() {
		t.Error("should not be ready while a startup hook blocks")
	}

	close(release)
	if err := lc.WaitForStartupContext(t.Context()); err != nil {
		t.Fatalf("WaitForStartupContext: %v", err)
	}
	if !lc.Ready() {
		t.Error("should be ready once hooks return")
	}
}

func TestShutdownHooksWaitForCancel(t *testing.T) {
	lc := lifecycle.New()

	var closed atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		closed.Store(true)
	})

	if closed.Load() {
		t.Fatal("shutdown hook ran before Shutdown")
	}
	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !closed.Load() {
		t.Error("shutdown hook did not run")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-block
	})

	if err := lc.Shutdown(20 * time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	lc := lifecycle.New()

	var runs atomic.Int32
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		runs.Add(1)
	})

	for range 2 {
		if err := lc.Shutdown(time.Second); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	}
	if got := runs.Load(); got != 1 {
		t.Errorf("shutdown hook runs: got %d, want 1", got)
	}
}
