package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher sends messages in the background. Send failures are logged and
// never reach the request that triggered the email.
type Dispatcher struct {
	sender  Sender
	logger  *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *logrus.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{sender: sender, logger: logger, timeout: timeout}
}

// Dispatch starts delivery of msg and returns immediately. The worker gets
// its own context so it outlives the HTTP request.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil && d.logger != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"to":      msg.To,
				"subject": msg.Subject,
			}).Warn("email dispatch failed")
		}
	}()
}

// Wait blocks until all in-flight dispatches finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
