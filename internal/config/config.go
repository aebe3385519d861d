package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level struct that holds all configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	MongoDB   MongoConfig     `yaml:"mongodb"`
	News      NewsConfig      `yaml:"news"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Retention RetentionConfig `yaml:"retention"`
	Account   AccountConfig   `yaml:"account"`
}

type ServerConfig struct {
	Port           string        `yaml:"port" env:"PORT"`
	MetricsPort    string        `yaml:"metrics_port" env:"METRICS_PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	SeriesCacheTTL time.Duration `yaml:"series_cache_ttl" env:"SERIES_CACHE_TTL"`
	CORSOrigin     string        `yaml:"cors_origin" env:"CORS_ORIGIN"`
}

// KafkaConfig holds the connection and topic layout for the two
// operation queues and the dead-letter topic.
type KafkaConfig struct {
	BrokerURL     string        `yaml:"broker_url" env:"KAFKA_BROKER_URL"`
	ExternalTopic string        `yaml:"external_topic" env:"KAFKA_EXTERNAL_TOPIC"`
	SystemTopic   string        `yaml:"system_topic" env:"KAFKA_SYSTEM_TOPIC"`
	DLQTopic      string        `yaml:"dlq_topic" env:"KAFKA_DLQ_TOPIC"`
	GroupID       string        `yaml:"group_id" env:"KAFKA_GROUP_ID"`
	MaxAttempts   int64         `yaml:"max_attempts" env:"KAFKA_MAX_ATTEMPTS"`
	HandlerBudget time.Duration `yaml:"handler_budget" env:"KAFKA_HANDLER_BUDGET"`
}

type MongoConfig struct {
	URL                  string        `yaml:"url" env:"MONGO_URL"`
	DatabaseName         string        `yaml:"database_name" env:"MONGO_DATABASE"`
	RecordsCollection    string        `yaml:"records_collection"`
	AppliedOpsCollection string        `yaml:"applied_ops_collection"`
	BlobBucket           string        `yaml:"blob_bucket"`
	AppliedOpsRetention  time.Duration `yaml:"applied_ops_retention"`
}

type NewsConfig struct {
	FeedURL      string        `yaml:"feed_url" env:"NEWS_FEED_URL"`
	QuoteURL     string        `yaml:"quote_url" env:"NEWS_QUOTE_URL"`
	MaxItems     int           `yaml:"max_items"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type SentimentConfig struct {
	DefaultThreshold int64 `yaml:"default_threshold"`
}

type SchedulerConfig struct {
	NewsFetchInterval time.Duration `yaml:"news_fetch_interval" env:"NEWS_FETCH_INTERVAL"`
	SnapshotInterval  time.Duration `yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL"`
	RetentionInterval time.Duration `yaml:"retention_interval" env:"RETENTION_INTERVAL"`
}

// RetentionConfig controls the news blob lifecycle for soft-deleted
// stocks: tag after SoftAfter, remove after HardAfter.
type RetentionConfig struct {
	SoftAfter time.Duration `yaml:"soft_after"`
	HardAfter time.Duration `yaml:"hard_after"`
}

type AccountConfig struct {
	DefaultAccountID string `yaml:"default_account_id" env:"DEFAULT_ACCOUNT_ID"`
}

// LoadConfig reads the configuration file from the given path and then
// applies environment overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.MetricsPort == "" {
		c.Server.MetricsPort = "9100"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 10 * time.Second
	}
	if c.Server.SeriesCacheTTL == 0 {
		c.Server.SeriesCacheTTL = time.Minute
	}
	if c.Kafka.MaxAttempts == 0 {
		c.Kafka.MaxAttempts = 5
	}
	if c.Kafka.HandlerBudget == 0 {
		c.Kafka.HandlerBudget = 30 * time.Second
	}
	if c.MongoDB.RecordsCollection == "" {
		c.MongoDB.RecordsCollection = "records"
	}
	if c.MongoDB.AppliedOpsCollection == "" {
		c.MongoDB.AppliedOpsCollection = "applied_ops"
	}
	if c.MongoDB.BlobBucket == "" {
		c.MongoDB.BlobBucket = "blobs"
	}
	if c.MongoDB.AppliedOpsRetention == 0 {
		c.MongoDB.AppliedOpsRetention = 24 * time.Hour
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 10
	}
	if c.News.FetchTimeout == 0 {
		c.News.FetchTimeout = 15 * time.Second
	}
	if c.Sentiment.DefaultThreshold == 0 {
		c.Sentiment.DefaultThreshold = 3
	}
	if c.Scheduler.NewsFetchInterval == 0 {
		c.Scheduler.NewsFetchInterval = 30 * time.Minute
	}
	if c.Scheduler.SnapshotInterval == 0 {
		c.Scheduler.SnapshotInterval = 15 * time.Minute
	}
	if c.Scheduler.RetentionInterval == 0 {
		c.Scheduler.RetentionInterval = 24 * time.Hour
	}
	if c.Retention.SoftAfter == 0 {
		c.Retention.SoftAfter = 3 * 7 * 24 * time.Hour
	}
	if c.Retention.HardAfter == 0 {
		c.Retention.HardAfter = 6 * 7 * 24 * time.Hour
	}
	if c.Account.DefaultAccountID == "" {
		c.Account.DefaultAccountID = "primary"
	}
}
