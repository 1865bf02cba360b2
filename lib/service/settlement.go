package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/store"
)

// SettleCharge pays every OUT entry of a charge that is still waiting and
// marks the IN entry paid once all OUT entries are paid. Only the transfers made by this
// call are returned, so a repeated call returns an empty list.
func (svc *SplithubService) SettleCharge(ctx context.Context, chargeID string) ([]models.SettledTransfer, error) {
	unlock := svc.locks.Lock(chargeID)
	defer unlock()

	charge, err := svc.Store.FindOne(ctx, store.Filter{
		Type:      common.EntryTypeIn,
		PaymentID: chargeID,
	})
	if errors.Is(err, store.ErrNotFound) {
		svc.Logger.Errorf("Settlement aborted, no ledger entry for charge_id:%s", chargeID)
		return nil, ErrChargeNotFound
	}
	if err != nil {
		return nil, err
	}

	waiting, err := svc.Store.FindMany(ctx, store.Filter{
		Type:      common.EntryTypeOut,
		Status:    common.EntryStatusWaiting,
		PaymentID: chargeID,
	})
	if err != nil {
		return nil, err
	}

	settled := []models.SettledTransfer{}
	for i := range waiting {
		entry := &waiting[i]
		transfer, err := svc.Gateway.CreateTransfer(ctx, gateway.TransferRequest{
			AccountID:         entry.AccountID,
			Amount:            entry.Amount,
			SourceTransaction: charge.PaymentID,
			Description:       entry.Description,
			TransferGroup:     entry.Description,
			IdempotencyKey:    transferIdempotencyKey(entry),
		})
		if err != nil {
			svc.Logger.Errorf("Transfer failed charge_id:%s entry_id:%d account:%s amount:%d error:%v", chargeID, entry.ID, entry.AccountID, entry.Amount, err)
			svc.publishSettlement(chargeID, settled)
			return nil, err
		}

		entry.TransferID = transfer.ID
		entry.Status = common.EntryStatusPaid
		err = svc.Store.Transition(ctx, entry, common.EntryStatusWaiting)
		if errors.Is(err, store.ErrStaleEntry) {
			svc.Logger.Warnf("Entry already settled elsewhere charge_id:%s entry_id:%d transfer_id:%s", chargeID, entry.ID, transfer.ID)
			continue
		}
		if err != nil {
			svc.captureErr(fmt.Errorf("transfer %s for charge %s not recorded: %w", transfer.ID, chargeID, err), map[string]interface{}{
				"charge_id":   chargeID,
				"entry_id":    entry.ID,
				"transfer_id": transfer.ID,
			})
			svc.publishSettlement(chargeID, settled)
			return nil, err
		}
		svc.Logger.Infof("Transfer paid charge_id:%s entry_id:%d account:%s amount:%d transfer_id:%s", chargeID, entry.ID, entry.AccountID, entry.Amount, transfer.ID)
		settled = append(settled, models.SettledTransfer{
			Amount:     entry.Amount,
			AccountID:  entry.AccountID,
			TransferID: transfer.ID,
		})
	}

	if charge.IsWaiting() {
		if err := svc.markChargePaid(ctx, charge); err != nil {
			svc.publishSettlement(chargeID, settled)
			return nil, err
		}
	}

	svc.publishSettlement(chargeID, settled)
	return settled, nil
}

// markChargePaid moves the IN entry to PAID once every OUT entry of the
// charge is paid. A cancelled or reimbursed payout keeps it waiting.
func (svc *SplithubService) markChargePaid(ctx context.Context, charge *models.LedgerEntry) error {
	outs, err := svc.Store.FindMany(ctx, store.Filter{
		Type:      common.EntryTypeOut,
		PaymentID: charge.PaymentID,
	})
	if err != nil {
		return err
	}
	for _, out := range outs {
		if out.Status != common.EntryStatusPaid {
			svc.Logger.Warnf("Charge left waiting charge_id:%s entry_id:%d status:%s", charge.PaymentID, out.ID, out.Status)
			return nil
		}
	}
	charge.Status = common.EntryStatusPaid
	err = svc.Store.Transition(ctx, charge, common.EntryStatusWaiting)
	if err != nil && !errors.Is(err, store.ErrStaleEntry) {
		return err
	}
	return nil
}

// transferIdempotencyKey makes the gateway return the existing transfer when
// the same entry is paid twice.
func transferIdempotencyKey(entry *models.LedgerEntry) string {
	return fmt.Sprintf("transfer-%s-%d", entry.PaymentID, entry.ID)
}
