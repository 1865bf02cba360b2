package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/letsco/splithub/db"
	"github.com/letsco/splithub/db/migrations"
	"github.com/letsco/splithub/docs"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/kafka"
	"github.com/letsco/splithub/lib/logging"
	"github.com/letsco/splithub/lib/service"
	"github.com/letsco/splithub/lib/transport"
	"github.com/letsco/splithub/rabbitmq"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/uptrace/bun/migrate"
	ddEcho "gopkg.in/DataDog/dd-trace-go.v1/contrib/labstack/echo.v4"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// @title        Splithub
// @version      1.0.0
// @description  Split payments: charge a payer once and pay every payee their share.

// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @schemes                     https http
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
	if err = c.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging to STDOUT or a configrued log file
	logger := logging.Logger(c.LogFilePath)

	// Open the ledger store based on the configured DATABASE_URI
	ledger, dbConn, err := db.OpenStore(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()
	// Migrate the DB, bolt stores need no migrations
	if dbConn != nil {
		migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
		err = migrator.Init(startupCtx)
		if err != nil {
			logger.Fatalf("Error initializing db migrator: %v", err)
		}
		_, err = migrator.Migrate(startupCtx)
		if err != nil {
			logger.Fatalf("Error migrating database: %v", err)
		}
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	gwConfig, err := gateway.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading gateway config: %v", err)
	}
	stripeClient := gateway.NewStripeClient(gwConfig, logger)

	svc := service.NewSplithubService(c, ledger, stripeClient, logger)

	// Settlement events go to every configured sink
	publishers := service.Publishers{}
	if c.WebhookUrl != "" {
		publishers = append(publishers, service.NewWebhookNotifier(c.WebhookUrl, logger))
	}
	// If no RABBITMQ_URI was provided we will not attempt to create a client
	// No rabbitmq features will be available in this case.
	var rabbitmqClient rabbitmq.Client
	if c.RabbitMQUri != "" {
		amqpClient, err := rabbitmq.DialAMQP(c.RabbitMQUri, logger)
		if err != nil {
			logger.Fatal(err)
		}

		defaultClient, err := rabbitmq.NewClient(amqpClient,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithSettlementExchange(c.RabbitMQSettlementExchange),
			rabbitmq.WithGatewayEventExchange(c.RabbitMQGatewayEventExchange),
			rabbitmq.WithGatewayEventQueueName(c.RabbitMQGatewayEventQueueName),
		)
		if err != nil {
			logger.Fatal(err)
		}
		rabbitmqClient = defaultClient
		publishers = append(publishers, defaultClient)

		// close the connection gently at the end of the runtime
		defer rabbitmqClient.Close()
	}
	if len(c.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(c.KafkaBrokers, c.KafkaSettlementTopic)
		publishers = append(publishers, kafkaPublisher)
		defer kafkaPublisher.Close()
	}
	if len(publishers) > 0 {
		svc.Publisher = publishers
	}

	//init echo server
	e := transport.InitEcho(c, logger)
	//if Datadog is configured, add datadog middleware
	if c.DatadogAgentUrl != "" {
		tracer.Start(tracer.WithAgentAddr(c.DatadogAgentUrl))
		defer tracer.Stop()
		e.Use(ddEcho.Middleware(ddEcho.WithServiceName("splithub")))
	}

	logMw := transport.CreateLoggingMiddleware(logger)
	transport.RegisterEndpoints(svc, e, stripeClient, logMw)

	//Swagger API spec
	docs.SwaggerInfo.Host = c.Host
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	var backgroundWg sync.WaitGroup
	backGroundCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Gateway events relayed through rabbitmq take the same path as the webhook
	if rabbitmqClient != nil {
		backgroundWg.Add(1)
		go func() {
			err := rabbitmqClient.SubscribeToGatewayEvents(backGroundCtx, svc)
			if err != nil && err != context.Canceled {
				sentry.CaptureException(err)
				svc.Logger.Error(err)
			}
			svc.Logger.Info("Gateway event consumer done")
			backgroundWg.Done()
		}()
	}

	//Start Prometheus server if necessary
	if c.EnablePrometheus {
		go transport.StartPrometheusEcho(logger, c, e)
	}

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-backGroundCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	//Wait for graceful shutdown of background routines
	backgroundWg.Wait()
	svc.WaitForEvents()
	if err := ledger.Close(); err != nil {
		svc.Logger.Error(err)
	}
	svc.Logger.Info("Splithub exiting gracefully. Goodbye.")
}
