package service

import (
	"fmt"
	"strings"

	"github.com/letsco/splithub/common"
)

type Config struct {
	DatabaseUri                   string   `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns              int      `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns          int      `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime       int      `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	SentryDSN                     string   `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate        float64  `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	DatadogAgentUrl               string   `envconfig:"DATADOG_AGENT_URL"`
	LogFilePath                   string   `envconfig:"LOG_FILE_PATH"`
	JWTSecret                     []byte   `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenExpiry          int      `envconfig:"JWT_ACCESS_EXPIRY" default:"172800"` // in seconds, default 2 days
	Host                          string   `envconfig:"HOST" default:"localhost:3000"`
	Port                          int      `envconfig:"PORT" default:"3000"`
	DefaultRateLimit              int      `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit               int      `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit                int      `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus              bool     `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort                int      `envconfig:"PROMETHEUS_PORT" default:"9092"`
	PaymentRail                   string   `envconfig:"PAYMENT_RAIL" default:"sepa_debit"`
	GatewayCacheTTL               int      `envconfig:"GATEWAY_CACHE_TTL" default:"300"` // in seconds
	WebhookUrl                    string   `envconfig:"WEBHOOK_URL"`
	RabbitMQUri                   string   `envconfig:"RABBITMQ_URI"`
	RabbitMQSettlementExchange    string   `envconfig:"RABBITMQ_SETTLEMENT_EXCHANGE" default:"splithub_settlement"`
	RabbitMQGatewayEventExchange  string   `envconfig:"RABBITMQ_GATEWAY_EVENT_EXCHANGE" default:"splithub_gateway_event"`
	RabbitMQGatewayEventQueueName string   `envconfig:"RABBITMQ_GATEWAY_EVENT_QUEUE_NAME" default:"splithub_gateway_event_consumer"`
	KafkaBrokers                  []string `envconfig:"KAFKA_BROKERS"`
	KafkaSettlementTopic          string   `envconfig:"KAFKA_SETTLEMENT_TOPIC" default:"settlements"`
	SettlementRetryAge            int      `envconfig:"SETTLEMENT_RETRY_AGE" default:"3600"` // in seconds
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.PaymentRail) {
	case common.RailCard, common.RailSepaDebit:
		return nil
	}
	return fmt.Errorf("unsupported payment rail %q", c.PaymentRail)
}
