package task

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestRun(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.TODO())

	errBoom := errors.New("boom")
	m.Add("a", func(context.Context) error { return errBoom })
	is.True(m.Exists("a"))

	done := make(chan error, 1)
	m.Run("a", done)
	is.Equal(<-done, errBoom)
	is.True(!m.Exists("a")) // finished tasks are removed
}

func TestRunNotFound(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.TODO())
	done := make(chan error, 1)
	m.Run("missing", done)
	is.Equal(<-done, ErrNotFound)
}

func TestAddExisting(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.TODO())
	calls := 0
	m.Add("a", func(context.Context) error { calls++; return nil })
	m.Add("a", func(context.Context) error { calls += 10; return nil })

	done := make(chan error, 1)
	m.Run("a", done)
	is.NoErr(<-done)
	is.Equal(calls, 1) // second Add is a no-op
}

func TestStop(t *testing.T) {
	is := is.New(t)
	m := NewManager(context.TODO())
	m.Add("a", func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() })
	is.NoErr(m.Stop("a"))
	is.Equal(m.Stop("a"), ErrNotFound)
}

func TestManagerCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.TODO())
	m := NewManager(ctx)
	m.Add("a", func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() })

	done := make(chan error, 1)
	cancel()
	m.Run("a", done)
	is.True(errors.Is(<-done, context.Canceled))
}
