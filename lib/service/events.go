package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/letsco/splithub/db/models"
)

const publishTimeout = 2 * time.Minute

type EventPublisher interface {
	PublishSettlement(ctx context.Context, event *models.SettlementEvent) error
}

// Publishers sends an event to every sink and joins their errors.
type Publishers []EventPublisher

func (p Publishers) PublishSettlement(ctx context.Context, event *models.SettlementEvent) error {
	var errs []error
	for _, publisher := range p {
		if err := publisher.PublishSettlement(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (svc *SplithubService) publishSettlement(chargeID string, transfers []models.SettledTransfer) {
	if svc.Publisher == nil || len(transfers) == 0 {
		return
	}
	event := &models.SettlementEvent{
		ID:         uuid.NewString(),
		ChargeID:   chargeID,
		Transfers:  transfers,
		OccurredAt: time.Now().UTC(),
	}

	svc.pending.Add(1)
	go func() {
		defer svc.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := svc.Publisher.PublishSettlement(ctx, event); err != nil {
			svc.captureErr(fmt.Errorf("publish settlement of charge %s: %w", chargeID, err), map[string]interface{}{
				"charge_id": chargeID,
				"event_id":  event.ID,
			})
			return
		}
		svc.Logger.Debugf("Settlement event published event_id:%s charge_id:%s", event.ID, chargeID)
	}()
}

// WaitForEvents blocks until every settlement event in flight is published.
func (svc *SplithubService) WaitForEvents() {
	svc.pending.Wait()
}
