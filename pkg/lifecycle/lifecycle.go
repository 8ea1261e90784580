// Package lifecycle coordinates startup and shutdown hooks for the service's
// long-lived subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a system has finished starting.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      atomic.Bool
	stopping   sync.Once
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently. Ready stays false until every startup
// hook has returned and WaitForStartup has observed it.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown runs fn concurrently. Shutdown hooks should block on
// <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Ready returns true after all startup hooks have completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.ready.Store(true)
}

// WaitForStartupContext is WaitForStartup bounded by ctx. The ready flag is
// only set when startup completes first.
func (c *Coordinator) WaitForStartupContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.startupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.ready.Store(true)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("startup: %w", ctx.Err())
	}
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout. Calls after the first only wait.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.stopping.Do(func() {
		c.ready.Store(false)
		c.cancel()
	})

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
