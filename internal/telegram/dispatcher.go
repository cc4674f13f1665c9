package telegram

import (
	"sync"
	"time"

	"github.com/selenkaonchain/spreadbot/internal/logger"
	"github.com/selenkaonchain/spreadbot/internal/models"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(text string) error
}

// Recorder journals a delivered alert.
type Recorder interface {
	Record(alert models.Alert, sentAt time.Time) error
}

// Dispatcher decouples alert delivery from the polling cycle: the
// orchestrator enqueues and returns immediately, and a single worker drains
// the queue with a minimum spacing between sends so a slow or rate-limited
// delivery path never stalls the next poll.
type Dispatcher struct {
	sender       Sender
	journal      Recorder
	referralCode string
	delay        time.Duration

	queue chan models.Alert
	wg    sync.WaitGroup
	once  sync.Once
}

// NewDispatcher creates a dispatcher with a bounded queue. journal may be nil.
func NewDispatcher(sender Sender, journal Recorder, referralCode string, delay time.Duration, queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		sender:       sender,
		journal:      journal,
		referralCode: referralCode,
		delay:        delay,
		queue:        make(chan models.Alert, queueSize),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for alert := range d.queue {
			text := FormatAlert(alert, d.referralCode)
			if err := d.sender.Send(text); err != nil {
				logger.Error("Failed to deliver alert for market %s: %v", alert.Market.ID, err)
			} else if d.journal != nil {
				if err := d.journal.Record(alert, time.Now()); err != nil {
					logger.Warn("Failed to journal alert for market %s: %v", alert.Market.ID, err)
				}
			}
			time.Sleep(d.delay)
		}
	}()
}

// Notify enqueues alerts in order without blocking the caller. Alerts that do
// not fit in the queue are dropped with a warning; the next cycle will
// re-detect anything still live.
func (d *Dispatcher) Notify(alerts []models.Alert) {
	for _, alert := range alerts {
		select {
		case d.queue <- alert:
		default:
			logger.Warn("Dispatch queue full, dropping alert for market %s", alert.Market.ID)
		}
	}
}

// Close stops accepting alerts and waits for queued deliveries to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
