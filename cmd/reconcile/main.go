package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/letsco/splithub/db"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/kafka"
	"github.com/letsco/splithub/lib/logging"
	"github.com/letsco/splithub/lib/service"
	"github.com/letsco/splithub/rabbitmq"
	"github.com/ziflex/lecho/v3"
)

// script to settle charges whose webhook was missed or failed
func main() {

	c := &service.Config{}

	// Load configruation from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	logger := logging.Logger(c.LogFilePath)

	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{Dsn: c.SentryDSN}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ledger, _, err := db.OpenStore(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}
	defer ledger.Close()

	gwConfig, err := gateway.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading gateway config: %v", err)
	}

	svc := service.NewSplithubService(c, ledger, gateway.NewStripeClient(gwConfig, logger), logger)
	publishers, closePublishers, err := settlementPublishers(c, logger, rabbitmq.DialAMQP)
	if err != nil {
		logger.Fatal(err)
	}
	defer closePublishers()
	if len(publishers) > 0 {
		svc.Publisher = publishers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	//only charges older than SETTLEMENT_RETRY_AGE, younger ones may still get their webhook
	settled, err := svc.ReconcileWaitingCharges(ctx, time.Duration(c.SettlementRetryAge)*time.Second)
	if err != nil {
		sentry.CaptureException(err)
		svc.Logger.Error(err)
	}
	svc.WaitForEvents()
	svc.Logger.Infof("Reconciliation done, settled %d charges", settled)
}

// settlementPublishers builds the same settlement sinks as the server, so
// charges settled here are announced like webhook-settled ones.
func settlementPublishers(c *service.Config, logger *lecho.Logger, dial func(uri string, logger *lecho.Logger) (rabbitmq.AMQPClient, error)) (service.Publishers, func(), error) {
	publishers := service.Publishers{}
	closers := []func() error{}
	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}

	if c.WebhookUrl != "" {
		publishers = append(publishers, service.NewWebhookNotifier(c.WebhookUrl, logger))
	}
	if c.RabbitMQUri != "" {
		amqpClient, err := dial(c.RabbitMQUri, logger)
		if err != nil {
			return nil, closeAll, err
		}
		rabbitmqClient, err := rabbitmq.NewClient(amqpClient,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithSettlementExchange(c.RabbitMQSettlementExchange),
		)
		if err != nil {
			amqpClient.Close()
			return nil, closeAll, err
		}
		publishers = append(publishers, rabbitmqClient)
		closers = append(closers, rabbitmqClient.Close)
	}
	if len(c.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(c.KafkaBrokers, c.KafkaSettlementTopic)
		publishers = append(publishers, kafkaPublisher)
		closers = append(closers, kafkaPublisher.Close)
	}
	return publishers, closeAll, nil
}
