package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

// Job is one unit of conversation work bound to a single phone number.
type Job func(ctx context.Context)

const phoneQueueBuffer = 64

// Dispatcher serializes processing per phone number: two rapid messages from
// the same customer run strictly in arrival order, while different customers
// are processed in parallel. Queues live for the process lifetime, one
// goroutine per active phone.
type Dispatcher struct {
	logger *logging.Logger

	// ctx stays live until queued work has drained; done signals shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	queues map[string]chan Job
	closed bool
}

// NewDispatcher creates a running dispatcher.
func NewDispatcher(logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		queues: make(map[string]chan Job),
	}
}

// Enqueue schedules a job on the phone's queue, creating it on first use.
// It never blocks: a full queue rejects the job so the webhook can still ack.
func (d *Dispatcher) Enqueue(phone string, job Job) error {
	if phone == "" {
		return errors.New("conversation: phone required")
	}
	if job == nil {
		return errors.New("conversation: job required")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.New("conversation: dispatcher closed")
	}
	defer d.mu.Unlock()
	q, ok := d.queues[phone]
	if !ok {
		q = make(chan Job, phoneQueueBuffer)
		d.queues[phone] = q
		d.wg.Add(1)
		go d.drain(phone, q)
	}

	// The send happens under the lock so Close cannot drain and exit the
	// queue goroutine between the closed check and the job landing.
	select {
	case q <- job:
		return nil
	default:
		return fmt.Errorf("conversation: queue full for %s", phone)
	}
}

func (d *Dispatcher) drain(phone string, q chan Job) {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			// Run whatever is already queued, then exit. The dispatcher
			// context is still live here so drained jobs complete normally.
			for {
				select {
				case job := <-q:
					d.run(phone, job)
				default:
					return
				}
			}
		case job := <-q:
			d.run(phone, job)
		}
	}
}

func (d *Dispatcher) run(phone string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("conversation job panicked", "phone", phone, "panic", r)
		}
	}()
	job(d.ctx)
}

// Close stops accepting jobs, drains queued work, and waits for completion.
// The job context is cancelled only after the drain finishes, so work queued
// before Close still runs to completion.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
	d.cancel()
}
