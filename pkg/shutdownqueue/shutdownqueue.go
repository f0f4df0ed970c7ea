// Package shutdownqueue collects named cleanup tasks and drains them in LIFO
// order when the process stops.
//
// Most binaries use the process-wide queue through Add and Shutdown:
//
//	defer func() {
//		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//		defer cancel()
//		_ = shutdownqueue.Shutdown(ctx)
//	}()
//
// Tasks run once. Panics are recovered and reported as errors. Shutdown is
// idempotent and returns every failure joined with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Queue is a LIFO list of shutdown tasks. The zero value is not usable; use New.
type Queue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
}

func New() *Queue {
	return &Queue{tasks: make([]namedTask, 0, 8)}
}

var defaultQueue = New()

// Add registers a task on the process-wide queue.
func Add(name string, t Task) { defaultQueue.Add(name, t) }

// Shutdown drains the process-wide queue.
func Shutdown(ctx context.Context) error { return defaultQueue.Shutdown(ctx) }

// Add registers a task to be run on Shutdown, in LIFO order.
// If t is nil or shutdown has already started, Add does nothing.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		slog.Warn("shutdown task registered after shutdown started; ignored", "task", name)

		return
	}

	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Len reports how many tasks are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order.
// After the first run, subsequent calls are no-ops.
//
// If ctx is canceled mid-drain, Shutdown stops before the next task and
// returns the context error joined with the task errors collected so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
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
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", tasks[i].name, ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", t.name, r)
		}
	}()

	slog.Info("running shutdown task", "task", t.name)

	err = t.run(ctx)
	if err != nil {
		return fmt.Errorf("shutdown task %q: %w", t.name, err)
	}

	return nil
}
