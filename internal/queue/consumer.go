package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/course-booking/internal/notification"
)

// Consumer delivers receipt events from the receipt queue.
type Consumer struct {
	url      string
	sender   notification.Sender
	policy   notification.RetryPolicy
	log      echo.Logger
	prefetch int
}

func NewConsumer(url string, sender notification.Sender, policy notification.RetryPolicy, logger echo.Logger) *Consumer {
	return &Consumer{url: url, sender: sender, policy: policy, log: logger, prefetch: 10}
}

// Run connects to the broker and consumes until ctx is cancelled.
// Dial failures and dropped connections are retried with exponential
// backoff, so the server keeps running while the broker is away.
func (c *Consumer) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0

	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			wait := bo.NextBackOff()
			c.log.Warnf("receipt-consumer: dial broker: %v; retrying in %s", err, wait)
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		bo.Reset()

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warnf("receipt-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warnf("receipt-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(ReceiptQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReceiptQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Infof("receipt-consumer: consuming %s", ReceiptQueueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process settles one delivery.  A message interrupted by shutdown goes
// back on the queue; any other failure is dropped.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handleMessage(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case ctx.Err() != nil:
		c.log.Warnf("receipt-consumer: shutting down, requeueing message: %v", err)
		_ = d.Nack(false, true)
	default:
		c.log.Errorf("receipt-consumer: handle message failed: %v", err)
		// reject without requeue to avoid tight redelivery loops
		_ = d.Nack(false, false)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev ReceiptRequested
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Task.StudentEmail == "" {
		return errors.New("receipt event without recipient")
	}
	return notification.Deliver(ctx, c.sender, ev.Task, c.policy, c.log)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
