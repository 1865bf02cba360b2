package service

import (
	"context"
	"fmt"
	"time"

	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/lib/store"
)

// ReconcileWaitingCharges settles charges whose webhook never arrived or
// failed: IN entries still waiting after maxAge whose charge succeeded at the
// gateway. It keeps going on errors and returns how many charges it settled.
func (svc *SplithubService) ReconcileWaitingCharges(ctx context.Context, maxAge time.Duration) (int, error) {
	charges, err := svc.Store.FindMany(ctx, store.Filter{
		Type:          common.EntryTypeIn,
		Status:        common.EntryStatusWaiting,
		CreatedBefore: time.Now().Add(-maxAge),
	})
	if err != nil {
		return 0, err
	}
	svc.Logger.Infof("Reconciliation: found %d waiting charges", len(charges))

	settled := 0
	for _, entry := range charges {
		select {
		case <-ctx.Done():
			return settled, ctx.Err()
		default:
		}

		charge, err := svc.Gateway.RetrieveCharge(ctx, entry.PaymentID)
		if err != nil {
			svc.captureErr(fmt.Errorf("reconcile charge %s: %w", entry.PaymentID, err), map[string]interface{}{
				"charge_id": entry.PaymentID,
			})
			continue
		}
		if !charge.Succeeded() {
			svc.Logger.Infof("Reconciliation: skipping charge_id:%s status:%s", charge.ID, charge.Status)
			continue
		}
		transfers, err := svc.SettleCharge(ctx, entry.PaymentID)
		if err != nil {
			svc.captureErr(fmt.Errorf("reconcile charge %s: %w", entry.PaymentID, err), map[string]interface{}{
				"charge_id": entry.PaymentID,
			})
			continue
		}
		svc.Logger.Infof("Reconciliation: settled charge_id:%s transfers:%d", entry.PaymentID, len(transfers))
		settled++
	}
	return settled, nil
}
