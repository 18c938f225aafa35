package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/serenityspa/spa-platform/internal/events"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

type dispatcherConfig struct {
	workers          int
	receiveBatchSize int
	receiveWaitSecs  int
}

// DispatcherOption customizes dispatcher behavior.
type DispatcherOption func(*dispatcherConfig)

// WithWorkerCount sets the number of consumer goroutines.
func WithWorkerCount(n int) DispatcherOption {
	return func(c *dispatcherConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// Dispatcher consumes booking events and sends the corresponding emails: a
// confirmation to the client and an alert to the spa manager. Messages are
// deleted only after delivery succeeds, so a failed send is redelivered.
type Dispatcher struct {
	queue    events.QueueClient
	sender   EmailSender
	renderer *Renderer
	logger   *logging.Logger
	cfg      dispatcherConfig
	wg       sync.WaitGroup
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(queue events.QueueClient, sender EmailSender, renderer *Renderer, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if renderer == nil {
		renderer = NewRenderer(nil)
	}
	cfg := dispatcherConfig{
		workers:          1,
		receiveBatchSize: 5,
		receiveWaitSecs:  10,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		queue:    queue,
		sender:   sender,
		renderer: renderer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Start launches consumer goroutines until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i+1)
	}
}

// Wait blocks until all consumer goroutines exit.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, workerID int) {
	defer d.wg.Done()
	d.logger.Debug("notification dispatcher started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("notification dispatcher stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := d.queue.Receive(ctx, d.cfg.receiveBatchSize, d.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("failed to receive booking events", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			d.handleMessage(ctx, msg)
		}
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg events.Message) {
	env, err := events.DecodeEnvelope(msg.Body)
	if err != nil {
		// Undecodable messages would loop forever; drop them.
		d.logger.Error("failed to decode booking event", "error", err, "msg_id", msg.ID)
		d.delete(msg)
		return
	}

	switch env.Kind {
	case events.KindBookingConfirmed:
		err = d.sendConfirmed(ctx, *env.Confirmed)
	case events.KindBookingCancelled:
		err = d.sendCancelled(ctx, *env.Cancelled)
	}

	if err != nil {
		// Leave the message on the queue for redelivery.
		d.logger.Error("failed to deliver notifications", "error", err, "event_id", env.ID)
		return
	}
	d.delete(msg)
}

func (d *Dispatcher) sendConfirmed(ctx context.Context, evt events.BookingConfirmedV1) error {
	if evt.ClientEmail != "" {
		if err := d.sender.Send(ctx, d.renderer.ClientConfirmation(evt)); err != nil {
			return err
		}
	}
	if d.renderer.profile.ManagerEmail != "" {
		if err := d.sender.Send(ctx, d.renderer.ManagerAlert(evt)); err != nil {
			return err
		}
	}
	d.logger.Info("booking confirmation delivered", "booking_id", evt.BookingID, "code", evt.ConfirmationCode)
	return nil
}

func (d *Dispatcher) sendCancelled(ctx context.Context, evt events.BookingCancelledV1) error {
	if evt.ClientEmail != "" {
		if err := d.sender.Send(ctx, d.renderer.ClientCancellation(evt)); err != nil {
			return err
		}
	}
	if d.renderer.profile.ManagerEmail != "" {
		if err := d.sender.Send(ctx, d.renderer.ManagerCancellationAlert(evt)); err != nil {
			return err
		}
	}
	d.logger.Info("booking cancellation delivered", "booking_id", evt.BookingID)
	return nil
}

func (d *Dispatcher) delete(msg events.Message) {
	if err := d.queue.Delete(context.Background(), msg.ReceiptHandle); err != nil {
		d.logger.Error("failed to delete booking event", "error", err, "msg_id", msg.ID)
	}
}
