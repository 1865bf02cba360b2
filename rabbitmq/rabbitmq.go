package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/lib/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"

	gatewayEventRoutingKey = "gateway.event.#"

	defaultRequeueDelay = 5 * time.Second
)

type Client interface {
	PublishSettlement(ctx context.Context, event *models.SettlementEvent) error
	SubscribeToGatewayEvents(ctx context.Context, svc SplithubService) error
	// Close will close all connections to rabbitmq
	Close() error
}

type SplithubService interface {
	HandleGatewayEvent(ctx context.Context, event service.GatewayEvent) ([]models.SettledTransfer, error)
}

type DefaultClient struct {
	amqpClient AMQPClient
	logger     *lecho.Logger

	settlementExchange    string
	gatewayEventExchange  string
	gatewayEventQueueName string
	requeueDelay          time.Duration
}

type ClientOption = func(client *DefaultClient)

func WithSettlementExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.settlementExchange = exchange
	}
}

func WithGatewayEventExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.gatewayEventExchange = exchange
	}
}

func WithGatewayEventQueueName(name string) ClientOption {
	return func(client *DefaultClient) {
		client.gatewayEventQueueName = name
	}
}

// WithRequeueDelay sets how long an event for a charge that is not recorded
// yet is held before it goes back to the queue.
func WithRequeueDelay(delay time.Duration) ClientOption {
	return func(client *DefaultClient) {
		client.requeueDelay = delay
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// NewClient declares the settlement exchange on the given connection.
func NewClient(amqpClient AMQPClient, options ...ClientOption) (*DefaultClient, error) {
	client := &DefaultClient{
		amqpClient:            amqpClient,
		logger:                lecho.New(os.Stdout, lecho.WithTimestamp()),
		settlementExchange:    "splithub_settlement",
		gatewayEventExchange:  "splithub_gateway_event",
		gatewayEventQueueName: "splithub_gateway_event_consumer",
		requeueDelay:          defaultRequeueDelay,
	}
	for _, opt := range options {
		opt(client)
	}

	// durable, non auto-deleted topic exchange
	err := amqpClient.ExchangeDeclare(client.settlementExchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (client *DefaultClient) Close() error { return client.amqpClient.Close() }

func (client *DefaultClient) PublishSettlement(ctx context.Context, event *models.SettlementEvent) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	if err := json.NewEncoder(payload).Encode(event); err != nil {
		return err
	}

	err := client.amqpClient.PublishWithContext(ctx,
		client.settlementExchange,
		common.SettlementRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Body:         payload.Bytes(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish settlement %s: %w", event.ID, err)
	}

	client.logger.Debugf("Published settlement to rabbitmq event_id:%s charge_id:%s", event.ID, event.ChargeID)
	return nil
}

// SubscribeToGatewayEvents feeds gateway events relayed through rabbitmq to
// the same dispatch as the http webhook. An event for a charge that is not in
// the ledger yet is requeued once, the charge may still be being recorded.
// Other failures are not requeued.
func (client *DefaultClient) SubscribeToGatewayEvents(ctx context.Context, svc SplithubService) error {
	deliveries, err := client.amqpClient.Listen(ctx, client.gatewayEventExchange, gatewayEventRoutingKey, client.gatewayEventQueueName)
	if err != nil {
		return err
	}

	client.logger.Info("Starting gateway event consumer")
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("disconnected from rabbitmq")
			}

			var event service.GatewayEvent
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				captureErr(client.logger, err)
				nack(client.logger, delivery)
				continue
			}

			settled, err := svc.HandleGatewayEvent(ctx, event)
			if errors.Is(err, service.ErrChargeNotFound) && !delivery.Redelivered {
				client.logger.Warnf("Requeueing gateway event for unrecorded charge event_id:%s charge_id:%s", event.ID, event.Data.Object.ID)
				client.requeueLater(delivery)
				continue
			}
			if err != nil {
				captureErr(client.logger, fmt.Errorf("gateway event %s: %w", event.ID, err))
				nack(client.logger, delivery)
				continue
			}
			client.logger.Infof("Handled gateway event from rabbitmq event_id:%s transfers:%d", event.ID, len(settled))

			if err := delivery.Ack(false); err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

// requeueLater keeps the delivery unacknowledged for the requeue delay so the
// consumer moves on to other messages meanwhile.
func (client *DefaultClient) requeueLater(delivery amqp.Delivery) {
	time.AfterFunc(client.requeueDelay, func() {
		if err := delivery.Nack(false, true); err != nil {
			captureErr(client.logger, err)
		}
	})
}

func nack(logger *lecho.Logger, delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		captureErr(logger, err)
	}
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}

var _ service.EventPublisher = (*DefaultClient)(nil)
