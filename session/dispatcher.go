package session

import (
	"context"
	"errors"
	"sync"

	"github.com/offplay/offplay/log"
)

// Dispatcher applies events to a session one at a time on its own goroutine.
// Media observations and requests share the same queue order.
type Dispatcher struct {
	session *Session
	queue   chan Event
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	// OnError receives every error an event produced. Errors are logged either way.
	OnError func(Event, error)
}

func NewDispatcher(s *Session, buffer int) *Dispatcher {
	return &Dispatcher{
		session: s,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
}

// Start runs the loop until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

func (d *Dispatcher) run(ctx context.Context) {
	media := d.session.ctx.Media.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case e := <-d.queue:
			d.apply(e)
		case me, ok := <-media:
			if !ok {
				media = nil
				continue
			}
			if e := FromMedia(me); e != nil {
				d.apply(e)
			}
		}
	}
}

func (d *Dispatcher) apply(e Event) {
	err := d.session.Apply(e)
	if err == nil {
		return
	}

	if errors.Is(err, ErrNotFound) {
		log.Info(err)
	} else {
		log.Errorf("apply %T: %v", e, err)
	}

	if d.OnError != nil {
		d.OnError(e, err)
	}
}

// Post queues e. It returns false once the dispatcher has stopped.
func (d *Dispatcher) Post(e Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.queue <- e:
		return true
	case <-d.done:
		return false
	}
}

// Stop ends the loop and waits for the event in progress to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.done) })
	d.wg.Wait()
}
