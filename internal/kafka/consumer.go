package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/models"
	"trading-watchlist-backend/internal/ops"
)

// retryBackoff is how long a consumer pauses after a delivery that must
// be redelivered, so a poisoned-but-transient operation does not spin.
const retryBackoff = 2 * time.Second

// Consumer drains one topic and hands every delivery to the dispatcher.
// A commit is the acknowledgement: applied, no-op and dead-lettered
// deliveries commit; retryable ones do not, so the group redelivers
// them after a rebalance or restart.
type Consumer struct {
	reader     *kafkaGo.Reader
	dispatcher *ops.Dispatcher
	publisher  *Publisher
	logger     *zap.Logger
}

func NewConsumer(brokerURL, topic, groupID string, d *ops.Dispatcher, p *Publisher, logger *zap.Logger) *Consumer {
	r := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: []string{brokerURL},
		Topic:   topic,
		GroupID: groupID,
	})
	return &Consumer{reader: r, dispatcher: d, publisher: p, logger: logger}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var op models.Operation
		if err := json.Unmarshal(m.Value, &op); err != nil {
			c.logger.Warn("undecodable delivery, dead-lettering",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			if derr := c.publisher.DeadLetter(ctx, m.Value, m.Key, "UNDECODABLE"); derr != nil {
				c.logger.Error("dlq publish failed", zap.Error(derr))
				time.Sleep(retryBackoff)
				continue
			}
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.Error("commit failed", zap.Error(err))
			}
			continue
		}

		res := c.dispatcher.Dispatch(ctx, op)
		// Redeliver in place until the dispatcher settles on a terminal
		// result. The dispatcher's attempt counter bounds this loop by
		// flipping persistent transients to dead-letter.
		for res == ops.ResultRetry {
			c.logger.Debug("redelivering",
				zap.String("kind", string(op.Kind)),
				zap.Int64("offset", m.Offset))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryBackoff):
			}
			res = c.dispatcher.Dispatch(ctx, op)
		}

		if res == ops.ResultDeadLetter {
			if derr := c.publisher.DeadLetter(ctx, m.Value, m.Key, "PERMANENT_FAILURE"); derr != nil {
				// Leave the delivery uncommitted; the group will replay
				// it and the dead-letter publish with it.
				c.logger.Error("dlq publish failed", zap.Error(derr))
				time.Sleep(retryBackoff)
				continue
			}
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit failed", zap.Error(err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
