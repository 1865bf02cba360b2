package models

import "time"

// SettledTransfer : an OUT entry paid during one settlement run
type SettledTransfer struct {
	Amount     int64  `json:"amount"`
	AccountID  string `json:"account"`
	TransferID string `json:"transfer"`
}

// SettlementEvent is published once a settlement run paid at least one transfer.
type SettlementEvent struct {
	ID         string            `json:"id"`
	ChargeID   string            `json:"charge"`
	Transfers  []SettledTransfer `json:"transfers"`
	OccurredAt time.Time         `json:"occurred_at"`
}
