package actorutil

import (
	"context"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
)

type startTask struct {
	task func(ctx actor.Context)
}

func spawnTaskRunner(system *actor.ActorSystem, results chan<- int) *actor.PID {
	props := actor.PropsFromFunc(func(ctx actor.Context) {
		switch msg := ctx.Message().(type) {
		case startTask:
			msg.task(ctx)
		case int:
			results <- msg
		}
	})
	return system.Root.Spawn(props)
}

func TestBackgroundTaskPipeTo(t *testing.T) {
	assert := assert.New(t)

	system := actor.NewActorSystem()
	results := make(chan int, 1)
	pid := spawnTaskRunner(system, results)

	system.Root.Send(pid, startTask{task: func(ctx actor.Context) {
		NewBackgroundTask(ctx, func(context.Context) (*int, error) {
			v := 42
			return &v, nil
		}).WithTimeout(time.Second).PipeTo(ctx.Self())
	}})

	select {
	case r := <-results:
		assert.Equal(42, r)
	case <-time.After(2 * time.Second):
		t.Fatal("no result received")
	}
}

func TestBackgroundTaskTimeoutIsRecovered(t *testing.T) {
	assert := assert.New(t)

	system := actor.NewActorSystem()
	results := make(chan int, 1)
	pid := spawnTaskRunner(system, results)

	system.Root.Send(pid, startTask{task: func(ctx actor.Context) {
		NewBackgroundTask(ctx, func(c context.Context) (*int, error) {
			<-c.Done()
			return nil, c.Err()
		}).WithTimeout(50 * time.Millisecond).Recover(func(err error) int {
			return -1
		}).PipeTo(ctx.Self())
	}})

	select {
	case r := <-results:
		assert.Equal(-1, r)
	case <-time.After(2 * time.Second):
		t.Fatal("no recovered result received")
	}
}

func TestBackgroundTaskDeadlineWaitsForFunction(t *testing.T) {
	assert := assert.New(t)

	system := actor.NewActorSystem()
	results := make(chan int, 2)
	pid := spawnTaskRunner(system, results)

	start := time.Now()
	system.Root.Send(pid, startTask{task: func(ctx actor.Context) {
		NewBackgroundTask(ctx, func(c context.Context) (*int, error) {
			time.Sleep(150 * time.Millisecond)
			v := 0
			if c.Err() != nil {
				v = 1
			}
			return &v, nil
		}).WithDeadline(20 * time.Millisecond).Recover(func(err error) int {
			return -1
		}).PipeTo(ctx.Self())
	}})

	select {
	case r := <-results:
		assert.Equal(1, r, "function must see its context expired")
		assert.GreaterOrEqual(time.Since(start), 150*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("no result received")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Empty(results)
}

func TestBackgroundTaskOnError(t *testing.T) {
	assert := assert.New(t)

	system := actor.NewActorSystem()
	errs := make(chan error, 1)
	results := make(chan int, 1)
	pid := spawnTaskRunner(system, results)

	system.Root.Send(pid, startTask{task: func(ctx actor.Context) {
		NewBackgroundTask(ctx, func(c context.Context) (*int, error) {
			return nil, context.Canceled
		}).OnError(func(err error) {
			errs <- err
		}).PipeTo(ctx.Self())
	}})

	select {
	case err := <-errs:
		assert.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("OnError not called")
	}
	assert.Empty(results)
}
