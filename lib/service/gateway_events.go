package service

import (
	"context"
	"strings"

	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
)

type GatewayObject struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

type GatewayEventData struct {
	Object GatewayObject `json:"object"`
}

// GatewayEvent is the envelope of a webhook delivered by the payment gateway.
type GatewayEvent struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data GatewayEventData `json:"data"`
}

type eventHandler func(svc *SplithubService, ctx context.Context, object GatewayObject) ([]models.SettledTransfer, error)

var eventHandlers = map[string]eventHandler{
	common.EventChargeSucceeded: (*SplithubService).handleChargeSucceeded,
}

// NormalizeEventType turns "charge.succeeded" into "charge_succeeded".
func NormalizeEventType(eventType string) string {
	return strings.ReplaceAll(eventType, ".", "_")
}

// HandleGatewayEvent dispatches a webhook to its handler. Unknown event
// types are acknowledged without doing anything.
func (svc *SplithubService) HandleGatewayEvent(ctx context.Context, event GatewayEvent) ([]models.SettledTransfer, error) {
	handler, ok := eventHandlers[NormalizeEventType(event.Type)]
	if !ok {
		svc.Logger.Debugf("Ignoring gateway event event_id:%s type:%s", event.ID, event.Type)
		return nil, nil
	}
	svc.Logger.Infof("Handling gateway event event_id:%s type:%s object_id:%s", event.ID, event.Type, event.Data.Object.ID)
	return handler(svc, ctx, event.Data.Object)
}

func (svc *SplithubService) handleChargeSucceeded(ctx context.Context, object GatewayObject) ([]models.SettledTransfer, error) {
	if object.Object != common.GatewayObjectCharge {
		return nil, invalid("data.object.object", "expected a charge")
	}
	if object.ID == "" {
		return nil, invalid("data.object.id", "is required")
	}
	return svc.SettleCharge(ctx, object.ID)
}
