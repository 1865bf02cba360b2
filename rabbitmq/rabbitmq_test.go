package rabbitmq_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/lib/service"
	"github.com/letsco/splithub/rabbitmq"
	"github.com/letsco/splithub/rabbitmq/mock_rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:generate mockgen -destination=./mock_rabbitmq/rabbitmq.go github.com/letsco/splithub/rabbitmq SplithubService,AMQPClient

// acknowledger records how deliveries were settled.
type acknowledger struct {
	mu       sync.Mutex
	acks     []uint64
	nacks    []uint64
	requeued []uint64
	doneCh   chan struct{}
}

func (a *acknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acks = append(a.acks, tag)
	a.mu.Unlock()
	a.doneCh <- struct{}{}
	return nil
}

func (a *acknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.mu.Lock()
	if requeue {
		a.requeued = append(a.requeued, tag)
	} else {
		a.nacks = append(a.nacks, tag)
	}
	a.mu.Unlock()
	a.doneCh <- struct{}{}
	return nil
}

func (a *acknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestPublishSettlement(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)

	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Eq("settlements"), gomock.Eq("topic"), true, false, false, false, gomock.Nil()).
		Times(1).
		Return(nil)

	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithSettlementExchange("settlements"))
	require.NoError(t, err)

	event := &models.SettlementEvent{
		ID:         "evt_1",
		ChargeID:   "ch_1",
		Transfers:  []models.SettledTransfer{{Amount: 6000, AccountID: "acct_A", TransferID: "tr_1"}},
		OccurredAt: time.Now().UTC(),
	}

	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Eq("settlements"), gomock.Eq(common.SettlementRoutingKey), false, false, gomock.Any()).
		Times(1).
		DoAndReturn(func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			var published models.SettlementEvent
			assert.NoError(t, json.Unmarshal(msg.Body, &published))
			assert.Equal(t, "ch_1", published.ChargeID)
			assert.Equal(t, "evt_1", msg.MessageId)
			assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
			return nil
		})

	assert.NoError(t, client.PublishSettlement(context.Background(), event))
}

func TestPublishSettlementError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	amqpClient.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	amqpClient.EXPECT().PublishWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(amqp.ErrClosed)

	client, err := rabbitmq.NewClient(amqpClient)
	require.NoError(t, err)

	err = client.PublishSettlement(context.Background(), &models.SettlementEvent{ID: "evt_1"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestSubscribeToGatewayEvents(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	svc := mock_rabbitmq.NewMockSplithubService(ctrl)

	amqpClient.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithRequeueDelay(10*time.Millisecond))
	require.NoError(t, err)

	ch := make(chan amqp.Delivery, 4)
	amqpClient.EXPECT().
		Listen(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Times(1).
		Return((<-chan amqp.Delivery)(ch), nil)

	svc.EXPECT().
		HandleGatewayEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event service.GatewayEvent) ([]models.SettledTransfer, error) {
			switch event.Data.Object.ID {
			case "ch_1":
				return []models.SettledTransfer{{Amount: 6000, AccountID: "acct_A", TransferID: "tr_1"}}, nil
			default:
				return nil, service.ErrChargeNotFound
			}
		}).
		Times(3)

	ack := &acknowledger{doneCh: make(chan struct{}, 4)}
	good, err := json.Marshal(service.GatewayEvent{
		ID:   "evt_1",
		Type: "charge.succeeded",
		Data: service.GatewayEventData{Object: service.GatewayObject{ID: "ch_1", Object: "charge"}},
	})
	require.NoError(t, err)
	unknown, err := json.Marshal(service.GatewayEvent{
		ID:   "evt_2",
		Type: "charge.succeeded",
		Data: service.GatewayEventData{Object: service.GatewayObject{ID: "ch_2", Object: "charge"}},
	})
	require.NoError(t, err)

	ch <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: good}
	ch <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: unknown}
	ch <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("not json")}
	// the requeued event comes back and still finds no charge
	ch <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 4, Body: unknown, Redelivered: true}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.SubscribeToGatewayEvents(ctx, svc)
	}()

	for i := 0; i < 4; i++ {
		select {
		case <-ack.doneCh:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for deliveries to be settled")
		}
	}
	cancel()
	assert.True(t, errors.Is(<-errCh, context.Canceled))

	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Equal(t, []uint64{1}, ack.acks)
	assert.Equal(t, []uint64{2}, ack.requeued)
	assert.ElementsMatch(t, []uint64{3, 4}, ack.nacks)
}
