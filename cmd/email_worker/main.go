package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/config"
	"github.com/oksasatya/go-account-core/pkg/helpers"
	"github.com/oksasatya/go-account-core/pkg/mailer"
)

const consumerTag = "email-worker"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, ch, err := helpers.OpenQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	deliveries, err := ch.Consume(cfg.RabbitMQEmailQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for d := range deliveries {
			handle(d, mg, cfg.MailWorkerTimeout, logger)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down")
	_ = ch.Cancel(consumerTag, false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

// handle delivers one queued message. Malformed payloads are dropped; send
// failures are requeued once and then dropped.
func handle(d amqp.Delivery, sender mailer.Sender, timeout time.Duration, logger *logrus.Logger) {
	var msg mailer.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		logger.WithError(err).WithField("message_id", d.MessageId).Warn("dropping malformed email message")
		_ = d.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sender.Send(ctx, msg); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"message_id":  d.MessageId,
			"to":          msg.To,
			"redelivered": d.Redelivered,
		}).Warn("email send failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}
