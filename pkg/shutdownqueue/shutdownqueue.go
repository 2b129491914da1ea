// Package shutdownqueue runs process teardown tasks in LIFO order.
//
// Components register their cleanup as they are constructed in main, so
// draining the queue stops them in reverse dependency order: the HTTP
// server first, then sessions, then Redis, then Postgres.
//
//	q := shutdownqueue.New()
//	q.Add("postgres", func(ctx context.Context) error { pool.Close(); return nil })
//	...
//	defer q.Shutdown(ctx)
//
// Tasks run once. Panics are recovered. Shutdown is idempotent and returns
// an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish.
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Queue is a LIFO list of named teardown tasks.
type Queue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{tasks: make([]namedTask, 0, 8)}
}

// Add registers a task. If t is nil or shutdown has already started, Add
// does nothing.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order. Calls after the first
// are no-ops.
//
// If ctx ends mid-drain, Shutdown stops early and returns the context error
// joined with any task errors so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed && len(q.tasks) == 0 {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var errs []error
	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled before %s: %w", tasks[i].name, ctx.Err()))
			return errors.Join(errs...)
		default:
		}

		if err := runTask(ctx, tasks[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in shutdown task %s: %v", t.name, r)
		}
	}()

	if err := t.run(ctx); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	return nil
}
