package notification

import (
	"context"
	"sync"
	"time"

	"agrirent-backend/internal/logger"
)

// Notifier delivers an event over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

// Dispatcher fans events out to every notifier in the background. Delivery failures are
// logged and never reach the caller.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifiers: notifiers, timeout: timeout}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Notifier panicked", "notifier", n.Name(), "event", ev.Type, "panic", r)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			logger.ExternalServiceCall(n.Name(), string(ev.Type), "rentalID", ev.Request.ID)
			err := n.Notify(ctx, ev)
			logger.ExternalServiceResult(n.Name(), string(ev.Type), err, "rentalID", ev.Request.ID)
		}(n)
	}
}

// Wait blocks until every dispatched delivery has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
