// Package mainloop runs posted functions one at a time on a single goroutine.
// Everything that touches the document in headless mode goes through it.
package mainloop

import (
	"context"
	"errors"
)

var ErrStopped = errors.New("main loop stopped")

const DefaultQueueSize = 64

type Loop struct {
	queue chan func()
	done  chan struct{}
}

func New(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and fails once the loop
// has returned.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Run executes posted functions in order until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
