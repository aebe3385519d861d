package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/config"
	"trading-watchlist-backend/internal/models"
)

// Publisher routes operations to the external or system topic by their
// origin. It implements ops.Emitter, so handlers can feed derived
// operations back into the pipeline.
type Publisher struct {
	external *kafkaGo.Writer
	system   *kafkaGo.Writer
	dlq      *kafkaGo.Writer
	logger   *zap.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) *Publisher {
	newWriter := func(topic string) *kafkaGo.Writer {
		return &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(cfg.BrokerURL),
			Topic:        topic,
			Balancer:     &kafkaGo.Hash{},
			RequiredAcks: kafkaGo.RequireAll,
		}
	}
	return &Publisher{
		external: newWriter(cfg.ExternalTopic),
		system:   newWriter(cfg.SystemTopic),
		dlq:      newWriter(cfg.DLQTopic),
		logger:   logger,
	}
}

// Emit publishes an operation to the topic its origin selects. The
// message key groups by account and kind so one account's operations of
// the same kind stay ordered on a partition.
func (p *Publisher) Emit(ctx context.Context, op models.Operation) error {
	value, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}

	w := p.system
	if op.Origin == models.OriginExternal {
		w = p.external
	}
	msg := kafkaGo.Message{
		Key:   []byte(op.AccountID + "|" + string(op.Kind)),
		Value: value,
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", op.Kind, err)
	}
	p.logger.Debug("operation published",
		zap.String("kind", string(op.Kind)),
		zap.String("origin", string(op.Origin)),
		zap.String("operation_id", op.OperationID))
	return nil
}

// DeadLetter copies a failed delivery to the dead-letter topic with the
// failure reason in a header.
func (p *Publisher) DeadLetter(ctx context.Context, raw []byte, key []byte, reason string) error {
	msg := kafkaGo.Message{
		Key:   key,
		Value: raw,
		Headers: []kafkaGo.Header{
			{Key: "failure", Value: []byte(reason)},
		},
	}
	if err := p.dlq.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	for _, w := range []*kafkaGo.Writer{p.external, p.system, p.dlq} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
