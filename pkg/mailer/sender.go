package mailer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/pkg/helpers"
)

// Sender delivers a rendered message. Implementations make a single attempt;
// nothing in this package retries.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// QueueSender hands messages to RabbitMQ for cmd/email_worker to deliver.
type QueueSender struct {
	Pub *helpers.RabbitPublisher
}

func NewQueueSender(pub *helpers.RabbitPublisher) *QueueSender {
	return &QueueSender{Pub: pub}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	return s.Pub.PublishJSON(ctx, msg)
}

// LogSender only logs messages. Used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	Logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email sending disabled; message logged")
	s.Logger.Debug(msg.Text)
	return nil
}

// MemorySender records messages in memory.
type MemorySender struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (s *MemorySender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
