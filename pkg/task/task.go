// Package task runs named background tasks, such as the calendar deletions
// scheduled when an event is removed.
package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotFound is returned when a task is not found.
	ErrNotFound = errors.New("task not found")

	// ErrAlreadyStarted is returned when a task is already started.
	ErrAlreadyStarted = errors.New("task already started")
)

// Task is a task that can be started and stopped.
type Task struct {
	id      string
	fn      func(context.Context) error
	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	err     error
}

// Manager manages tasks.
type Manager struct {
	m   sync.Map
	ctx context.Context
}

// NewManager returns a new task manager. Every task is cancelled when ctx is.
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		m:   sync.Map{},
		ctx: ctx,
	}
}

// Add adds a task to the manager.
// If the task already exists, it is a no-op.
func (m *Manager) Add(id string, fn func(context.Context) error) {
	ctx, cancel := context.WithCancel(m.ctx)
	if _, loaded := m.m.LoadOrStore(id, &Task{
		id:     id,
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
	}); loaded {
		cancel()
	}
}

// Stop stops the task and removes it from the manager.
func (m *Manager) Stop(id string) error {
	v, ok := m.m.LoadAndDelete(id)
	if !ok {
		return ErrNotFound
	}

	v.(*Task).cancel()
	return nil
}

// Exists checks if a task exists.
func (m *Manager) Exists(id string) bool {
	_, ok := m.m.Load(id)
	return ok
}

// Run starts the task and sends its result to done. If the task is already
// running, Run waits for it to finish and sends the same result.
func (m *Manager) Run(id string, done chan<- error) {
	v, ok := m.m.Load(id)
	if !ok {
		done <- ErrNotFound
		return
	}

	p := v.(*Task)
	if !p.started.CompareAndSwap(false, true) {
		<-p.ctx.Done()
		if p.err != nil {
			done <- p.err
			return
		}
		done <- p.ctx.Err()
		return
	}

	defer m.m.Delete(id)

	errc := make(chan error, 1)
	go func(ctx context.Context) {
		errc <- p.fn(ctx)
	}(p.ctx)

	select {
	case <-m.ctx.Done():
		p.cancel()
		done <- m.ctx.Err()
	case err := <-errc:
		p.err = err
		p.cancel()
		done <- err
	}
}
