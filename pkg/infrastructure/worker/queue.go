// Package worker runs best-effort background tasks on a fixed pool of
// goroutines fed by a bounded channel.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

// Observer receives queue outcomes, typically for metrics.
type Observer interface {
	TaskDropped(name string)
	TaskFinished(name string, err error)
}

type Config struct {
	Workers     int
	Capacity    int
	TaskTimeout time.Duration
}

type Queue struct {
	jobs     chan job
	timeout  time.Duration
	observer Observer
	group    *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

func NewQueue(ctx context.Context, config Config, observer Observer) *Queue {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Capacity <= 0 {
		config.Capacity = 100
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 30 * time.Second
	}

	q := &Queue{
		jobs:     make(chan job, config.Capacity),
		timeout:  config.TaskTimeout,
		observer: observer,
	}
	q.group, _ = errgroup.WithContext(ctx)
	for i := 0; i < config.Workers; i++ {
		q.group.Go(func() error {
			q.work(ctx)
			return nil
		})
	}
	return q
}

// Submit never blocks. It returns false when the queue is full or closed.
func (q *Queue) Submit(name string, task func(ctx context.Context) error) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped(name, "queue closed")
		return false
	}
	select {
	case q.jobs <- job{name: name, task: task}:
		return true
	default:
		q.dropped(name, "queue full")
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	return q.group.Wait()
}

func (q *Queue) work(ctx context.Context) {
	for j := range q.jobs {
		q.run(ctx, j)
	}
}

func (q *Queue) run(ctx context.Context, j job) {
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("task %s panicked: %v", j.name, r)
			}
		}()
		return j.task(taskCtx)
	}()
	if err != nil {
		log.WithError(err).WithField("task", j.name).Warn("background task failed")
	}
	if q.observer != nil {
		q.observer.TaskFinished(j.name, err)
	}
}

func (q *Queue) dropped(name, reason string) {
	log.WithFields(log.Fields{"task": name, "reason": reason}).Warn("background task dropped")
	if q.observer != nil {
		q.observer.TaskDropped(name)
	}
}
