package services

import (
	"context"
	"sync"
)

// PauseGate lets the API pause long-running syncs cooperatively. Workers
// call Wait at unit boundaries; when paused, Wait blocks until Resume or
// context cancellation. Pausing never interrupts an in-flight unit.
type PauseGate struct {
	mu     sync.Mutex
	resume chan struct{}
	paused bool
}

// NewPauseGate returns a gate in the running state.
func NewPauseGate() *PauseGate {
	resume := make(chan struct{})
	close(resume)
	return &PauseGate{resume: resume}
}

// Pause blocks workers at their next Wait call. Idempotent.
func (g *PauseGate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		g.paused = true
		g.resume = make(chan struct{})
	}
}

// Resume releases all blocked workers. Idempotent.
func (g *PauseGate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.paused = false
		close(g.resume)
	}
}

// Paused reports the gate state.
func (g *PauseGate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait blocks while the gate is paused. Returns the context error when the
// caller is cancelled mid-pause.
func (g *PauseGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	resume := g.resume
	g.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resume:
		return nil
	}
}
