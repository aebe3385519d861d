package kafka

import (
	"net"
	"strconv"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"trading-watchlist-backend/internal/config"
)

// EnsureTopics creates the external, system and dead-letter topics if
// they do not exist yet.
func EnsureTopics(cfg config.KafkaConfig, logger *zap.Logger) error {
	conn, err := kafkaGo.Dial("tcp", cfg.BrokerURL)
	if err != nil {
		logger.Error("failed to dial broker for topic creation", zap.Error(err))
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		logger.Error("failed to get controller", zap.Error(err))
		return err
	}

	controllerConn, err := kafkaGo.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		logger.Error("failed to connect to controller", zap.Error(err))
		return err
	}
	defer controllerConn.Close()

	topics := []kafkaGo.TopicConfig{
		{Topic: cfg.ExternalTopic, NumPartitions: 1, ReplicationFactor: 1},
		{Topic: cfg.SystemTopic, NumPartitions: 1, ReplicationFactor: 1},
		{Topic: cfg.DLQTopic, NumPartitions: 1, ReplicationFactor: 1},
	}
	if err := controllerConn.CreateTopics(topics...); err != nil {
		logger.Error("failed to create topics", zap.Error(err))
		return err
	}

	logger.Info("kafka topics ready",
		zap.String("external", cfg.ExternalTopic),
		zap.String("system", cfg.SystemTopic),
		zap.String("dlq", cfg.DLQTopic))
	return nil
}
