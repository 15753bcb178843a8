package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"taskhub/pkg/metrics"
	"taskhub/pkg/trace"
	"taskhub/pkg/util"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// DeadLetterPublisher receives messages that failed permanently.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, errorType, originalError string) error
}

// RetryTracker counts redeliveries per message.
type RetryTracker interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type Consumer struct {
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	conn       *amqp091.Connection
	logger     *zap.Logger

	dlq        DeadLetterPublisher
	retries    RetryTracker
	maxRetries int64
}

// NewConsumer creates a consumer for a specific routing key.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(format string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf(format, err)
	}

	if err := DeclareExchange(ch); err != nil {
		return fail("failed to declare exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(ch, routingKey); err != nil {
		return fail("failed to declare dlq: %w", err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fail("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, ExchangeName, false, nil); err != nil {
		return fail("failed to bind queue: %w", err)
	}
	if err := ch.Qos(8, 0, false); err != nil {
		return fail("failed to set qos: %w", err)
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// SetDeadLetter routes non-retryable failures to dlq instead of dropping them.
func (c *Consumer) SetDeadLetter(dlq DeadLetterPublisher) {
	c.dlq = dlq
}

// SetRetryPolicy caps redeliveries of retryable failures at maxRetries.
// Without a tracker retryable failures are requeued indefinitely.
func (c *Consumer) SetRetryPolicy(tracker RetryTracker, maxRetries int64) {
	c.retries = tracker
	c.maxRetries = maxRetries
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks until ctx is done or the delivery channel closes.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for queue %s", c.queue.Name)
			}
			c.handle(ctx, msg)
		}
	}
}

// handle guarantees every delivery is acked or nacked exactly once.
func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()
	traceID, _ := msg.Headers["x-trace-id"].(string)
	ctx = trace.WithContext(ctx, trace.Ensure(traceID))

	log := c.logger.With(
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
		zap.String("message_id", msg.MessageId),
	)
	log.Debug("Received message", zap.Int("message_size", len(msg.Body)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panic recovered", zap.Any("panic", r))
			c.nack(log, msg, true)
		}
		metrics.RecordMQConsumeLatency(c.routingKey, c.queue.Name, time.Since(start))
	}()

	err := c.handler(ctx, msg.Body)
	if err == nil {
		c.clearRetries(ctx, msg)
		if err := msg.Ack(false); err != nil {
			log.Error("Failed to ack message", zap.Error(err))
			return
		}
		log.Debug("Message processed successfully")
		return
	}

	retryable, errorType := util.IsRetryableError(err)
	log = log.With(zap.String("error_type", errorType), zap.Error(err))

	if retryable && c.withinRetryBudget(ctx, log, msg) {
		log.Warn("Handler failed, requeueing")
		c.nack(log, msg, true)
		return
	}

	log.Error("Handler failed permanently, dead-lettering")
	c.deadLetter(ctx, log, msg, errorType, err)
}

func (c *Consumer) withinRetryBudget(ctx context.Context, log *zap.Logger, msg amqp091.Delivery) bool {
	if c.retries == nil || msg.MessageId == "" {
		return true
	}
	count, err := c.retries.IncrementAndGet(ctx, util.FormatRetryKey(c.routingKey, msg.MessageId))
	if err != nil {
		log.Warn("Retry counter unavailable, requeueing", zap.NamedError("counter_error", err))
		return true
	}
	return util.ShouldRetry(count, c.maxRetries, true)
}

func (c *Consumer) clearRetries(ctx context.Context, msg amqp091.Delivery) {
	if c.retries == nil || msg.MessageId == "" {
		return
	}
	_ = c.retries.Reset(ctx, util.FormatRetryKey(c.routingKey, msg.MessageId))
}

func (c *Consumer) deadLetter(ctx context.Context, log *zap.Logger, msg amqp091.Delivery, errorType string, cause error) {
	if c.dlq != nil {
		if err := c.dlq.PublishToDLQ(ctx, c.routingKey, msg.Body, errorType, cause.Error()); err != nil {
			log.Error("Failed to publish to DLQ, requeueing", zap.NamedError("dlq_error", err))
			c.nack(log, msg, true)
			return
		}
	}
	c.clearRetries(ctx, msg)
	if err := msg.Ack(false); err != nil {
		log.Error("Failed to ack dead-lettered message", zap.NamedError("ack_error", err))
	}
}

func (c *Consumer) nack(log *zap.Logger, msg amqp091.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		log.Error("Failed to nack message", zap.NamedError("nack_error", err))
	}
}
