package actorutil

import (
	"context"
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

// SafeBackgroundTask runs a blocking function off the actor goroutine and
// delivers its result as a message. Panics and timeouts become errors.
type SafeBackgroundTask[T any] struct {
	system   *actor.ActorSystem
	fn       func(context.Context) (*T, error)
	timeout  time.Duration
	deadline time.Duration
	onError  func(error)
	recover  func(error) T
}

func NewBackgroundTask[T any](ctx actor.Context, fn func(context.Context) (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		system: ctx.ActorSystem(),
		fn:     fn,
	}
}

func NewBackgroundTaskNoError[T any](ctx actor.Context, fn func(context.Context) *T) *SafeBackgroundTask[T] {
	return NewBackgroundTask(ctx, func(c context.Context) (*T, error) {
		return fn(c), nil
	})
}

// WithTimeout bounds the task. The function context is cancelled when the
// timeout expires.
func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = timeout
	return t
}

// WithDeadline cancels the function context when the deadline expires but,
// unlike WithTimeout, still waits for the function to return. The result is
// delivered only once the function is done.
func (t *SafeBackgroundTask[T]) WithDeadline(deadline time.Duration) *SafeBackgroundTask[T] {
	t.deadline = deadline
	return t
}

func (t *SafeBackgroundTask[T]) OnError(fn func(error)) *SafeBackgroundTask[T] {
	t.onError = fn
	return t
}

// Recover maps a failure to a value that is delivered like a result.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	go func() {
		if value, ok := t.Run(); ok {
			t.system.Root.Send(pid, value)
		}
	}()
}

// Run executes the task on the calling goroutine.
func (t *SafeBackgroundTask[T]) Run() (T, bool) {
	ctx := context.Background()
	if limit := t.contextLimit(); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	bg := io.Map(io.Eval(func() (*T, error) {
		return t.fn(ctx)
	}), func(a *T) T {
		if a != nil {
			return *a
		}
		panic(errors.New("result is nil"))
	})
	if t.timeout > 0 {
		bg = io.WithTimeout[T](t.timeout)(bg)
	}
	result := io.RunSync(bg)
	if result.Error != nil {
		if t.recover != nil {
			return t.recover(result.Error), true
		}
		if t.onError != nil {
			t.onError(result.Error)
		}
		var zero T
		return zero, false
	}
	return result.Value, true
}

func (t *SafeBackgroundTask[T]) contextLimit() time.Duration {
	if t.deadline > 0 && (t.timeout <= 0 || t.deadline < t.timeout) {
		return t.deadline
	}
	return t.timeout
}
