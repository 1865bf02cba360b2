package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/letsco/splithub/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chargeEvent(eventType, object, id string) GatewayEvent {
	return GatewayEvent{
		ID:   "evt_1",
		Type: eventType,
		Data: GatewayEventData{Object: GatewayObject{ID: id, Object: object}},
	}
}

func TestNormalizeEventType(t *testing.T) {
	assert.Equal(t, "charge_succeeded", NormalizeEventType("charge.succeeded"))
	assert.Equal(t, "charge_dispute_created", NormalizeEventType("charge.dispute.created"))
	assert.Equal(t, "ping", NormalizeEventType("ping"))
}

func TestChargeSucceededSettles(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)
	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).Times(2).Return(&gateway.Transfer{ID: "tr_1"}, nil)

	settled, err := env.svc.HandleGatewayEvent(context.Background(), chargeEvent("charge.succeeded", "charge", "ch_1"))
	require.NoError(t, err)
	assert.Len(t, settled, 2)
	assertFullySettled(t, env, "ch_1")

	settled, err = env.svc.HandleGatewayEvent(context.Background(), chargeEvent("charge.succeeded", "charge", "ch_1"))
	require.NoError(t, err)
	assert.Empty(t, settled)
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	for _, eventType := range []string{"charge.refunded", "payout.paid", "", "charge_succeeded_later"} {
		settled, err := env.svc.HandleGatewayEvent(context.Background(), chargeEvent(eventType, "charge", "ch_1"))
		assert.NoError(t, err, eventType)
		assert.Nil(t, settled, eventType)
	}
}

func TestMalformedChargeEventIsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	for _, event := range []GatewayEvent{
		chargeEvent("charge.succeeded", "payment_intent", "ch_1"),
		chargeEvent("charge.succeeded", "charge", ""),
		chargeEvent("charge.succeeded", "", ""),
	} {
		_, err := env.svc.HandleGatewayEvent(context.Background(), event)
		var validationErr *ValidationError
		assert.True(t, errors.As(err, &validationErr))
	}
}

func TestChargeSucceededForUnknownCharge(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.HandleGatewayEvent(context.Background(), chargeEvent("charge.succeeded", "charge", "ch_missing"))
	assert.ErrorIs(t, err, ErrChargeNotFound)
}
