package models

import (
	"context"
	"time"

	"github.com/letsco/splithub/common"
	"github.com/uptrace/bun"
)

// LedgerEntry : one leg of a split payment. The IN entry records the payer's
// charge, every OUT entry one payee's share of it.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entries,alias:le"`

	ID          int64        `json:"id" bun:",pk,autoincrement"`
	Type        string       `json:"type" bun:",notnull"`
	Status      string       `json:"status" bun:",notnull,default:'WAITING'"`
	PaymentID   string       `json:"payment_id" bun:",notnull"`
	AccountID   string       `json:"account_id" bun:",notnull"`
	TransferID  string       `json:"transfer_id,omitempty" bun:",nullzero"`
	Amount      int64        `json:"amount" bun:",notnull"`
	Description string       `json:"description" bun:",nullzero"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`
}

func (e *LedgerEntry) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		e.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

func (e *LedgerEntry) IsWaiting() bool {
	return e.Status == common.EntryStatusWaiting
}

func (e *LedgerEntry) IsPaid() bool {
	return e.Status == common.EntryStatusPaid
}

var _ bun.BeforeAppendModelHook = (*LedgerEntry)(nil)
