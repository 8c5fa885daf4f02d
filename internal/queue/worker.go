package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrConsumerClosed = errors.New("consumer closed")

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry delivers messages from queue to handler until ctx ends or
// the channel closes. A failed message is republished with an incremented
// x-retry-count header; after maxRetries it is rejected to the dead-letter
// queue.
func (c *Client) ConsumeWithRetry(ctx context.Context, queue string, handler HandlerFunc, maxRetries int64, retryDelay time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		var msg amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok = <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
		}

		err := handler(ctx, msg.Body)
		if err == nil {
			_ = msg.Ack(false)
			continue
		}

		retryCount := getRetryCount(msg.Headers)
		if retryCount >= maxRetries {
			logger.Warn("message dead-lettered", zap.String("queue", queue), zap.Int64("retries", retryCount), zap.Error(err))
			_ = msg.Nack(false, false)
			continue
		}

		retryCount++
		headers := msg.Headers
		if headers == nil {
			headers = amqp.Table{}
		}
		headers["x-retry-count"] = retryCount

		logger.Info("message retry scheduled", zap.String("queue", queue), zap.Int64("retry", retryCount), zap.Error(err))
		select {
		case <-ctx.Done():
			_ = msg.Nack(false, true)
			return ctx.Err()
		case <-time.After(retryDelay):
		}
		if pubErr := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
			Timestamp:   time.Now(),
		}); pubErr != nil {
			logger.Error("message retry publish failed", zap.String("queue", queue), zap.Error(pubErr))
			_ = msg.Nack(false, true)
			continue
		}
		_ = msg.Ack(false)
	}
}

func getRetryCount(headers amqp.Table) int64 {
	if headers == nil {
		return 0
	}
	switch t := headers["x-retry-count"].(type) {
	case int32:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	}
	return 0
}
