package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/store"
	"github.com/shopspring/decimal"
)

const compensationTimeout = 30 * time.Second

type Split struct {
	AccountID string
	Amount    int64
}

type SplitChargeRequest struct {
	CustomerID     string
	TotalAmount    int64
	Description    string
	Metadata       map[string]string
	Splits         []Split
	IdempotencyKey string
}

type SplitChargeResult struct {
	ChargeID string
	Fees     decimal.Decimal
	Entries  []*models.LedgerEntry
}

func (r *SplitChargeRequest) Validate() error {
	if r.CustomerID == "" {
		return invalid("customer", "is required")
	}
	if r.TotalAmount <= 0 {
		return invalid("total_amount", "must be greater than 0")
	}
	if len(r.Splits) == 0 {
		return invalid("accounts", "at least one account is required")
	}
	var sum int64
	for i, split := range r.Splits {
		if split.AccountID == "" {
			return invalid(fmt.Sprintf("accounts[%d].id", i), "is required")
		}
		if split.Amount <= 0 {
			return invalid(fmt.Sprintf("accounts[%d].amount", i), "must be greater than 0")
		}
		if split.Amount > r.TotalAmount-sum {
			return invalid("accounts", "split amounts exceed total_amount")
		}
		sum += split.Amount
	}
	return nil
}

// CreateSplitCharge charges the customer for the total amount and records
// the IN entry plus one OUT entry per split, all waiting for settlement.
// Nothing is written to the ledger when the charge fails. A charge the
// gateway replays for a reused idempotency key is returned as recorded.
func (svc *SplithubService) CreateSplitCharge(ctx context.Context, req SplitChargeRequest) (*SplitChargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := svc.Gateway.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	charge, err := svc.Gateway.CreateCharge(ctx, gateway.ChargeRequest{
		CustomerID:     customer.ID,
		Amount:         req.TotalAmount,
		Description:    req.Description,
		Metadata:       req.Metadata,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		svc.Logger.Errorf("Charge failed customer:%s amount:%d error:%v", customer.ID, req.TotalAmount, err)
		return nil, err
	}

	recorded, err := svc.recordedCharge(ctx, charge.ID)
	if err != nil {
		return nil, err
	}
	if recorded != nil {
		svc.Logger.Infof("Split charge replayed charge_id:%s idempotency_key:%s", charge.ID, req.IdempotencyKey)
		return recorded, nil
	}

	entries := make([]*models.LedgerEntry, 0, len(req.Splits)+1)
	entries = append(entries, &models.LedgerEntry{
		Type:        common.EntryTypeIn,
		Status:      common.EntryStatusWaiting,
		PaymentID:   charge.ID,
		AccountID:   customer.ID,
		Amount:      req.TotalAmount,
		Description: req.Description,
	})
	for _, split := range req.Splits {
		entries = append(entries, &models.LedgerEntry{
			Type:        common.EntryTypeOut,
			Status:      common.EntryStatusWaiting,
			PaymentID:   charge.ID,
			AccountID:   split.AccountID,
			Amount:      split.Amount,
			Description: req.Description,
		})
	}

	if err := svc.Store.CreateEntries(ctx, entries); err != nil {
		// a concurrent replay of the same charge may have won the write
		if recorded, lookupErr := svc.recordedCharge(ctx, charge.ID); lookupErr == nil && recorded != nil {
			svc.Logger.Infof("Split charge recorded concurrently charge_id:%s", charge.ID)
			return recorded, nil
		}
		if errors.Is(err, store.ErrDuplicatePayment) {
			return nil, err
		}
		svc.compensateCharge(ctx, charge, err)
		return nil, err
	}

	svc.Logger.Infof("Split charge created charge_id:%s customer:%s amount:%d transfers:%d", charge.ID, customer.ID, req.TotalAmount, len(req.Splits))
	return &SplitChargeResult{
		ChargeID: charge.ID,
		Fees:     svc.ChargeFees(req.TotalAmount),
		Entries:  entries,
	}, nil
}

// recordedCharge loads the ledger of a charge, or returns nil when the charge
// has no entries yet.
func (svc *SplithubService) recordedCharge(ctx context.Context, chargeID string) (*SplitChargeResult, error) {
	stored, err := svc.Store.FindMany(ctx, store.Filter{PaymentID: chargeID})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	result := &SplitChargeResult{ChargeID: chargeID, Entries: make([]*models.LedgerEntry, 0, len(stored))}
	for i := range stored {
		if stored[i].Type == common.EntryTypeIn {
			result.Fees = svc.ChargeFees(stored[i].Amount)
		}
		result.Entries = append(result.Entries, &stored[i])
	}
	return result, nil
}

// compensateCharge refunds a charge whose ledger entries could not be stored.
// It outlives the request context.
func (svc *SplithubService) compensateCharge(ctx context.Context, charge *gateway.Charge, cause error) {
	svc.captureErr(fmt.Errorf("ledger write failed after charge %s: %w", charge.ID, cause), map[string]interface{}{
		"charge_id": charge.ID,
		"customer":  charge.CustomerID,
		"amount":    charge.Amount,
	})

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	refund, err := svc.Gateway.RefundCharge(ctx, charge.ID, "refund-"+charge.ID)
	if err != nil {
		svc.captureErr(fmt.Errorf("refund of unrecorded charge %s failed, manual reconciliation needed: %w", charge.ID, err), map[string]interface{}{
			"charge_id": charge.ID,
		})
		return
	}
	svc.Logger.Warnf("Refunded unrecorded charge charge_id:%s refund_id:%s amount:%d", charge.ID, refund.ID, refund.Amount)
}
