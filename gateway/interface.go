package gateway

import (
	"context"
	"time"
)

//go:generate mockgen -destination=./mock_gateway/gateway.go github.com/letsco/splithub/gateway Client

// Client is everything the orchestrator needs from the payment gateway.
type Client interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	CreateAccount(ctx context.Context, req AccountRequest) (*Account, error)
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	RetrieveCharge(ctx context.Context, id string) (*Charge, error)
	RefundCharge(ctx context.Context, chargeID, idempotencyKey string) (*Refund, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
}

const ChargeStatusSucceeded = "succeeded"

type Customer struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
}

type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"`
	Country        string    `json:"country,omitempty"`
	Type           string    `json:"type"`
	ChargesEnabled bool      `json:"charges_enabled"`
	PayoutsEnabled bool      `json:"payouts_enabled"`
	Created        time.Time `json:"created"`
}

type Charge struct {
	ID            string    `json:"id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	Paid          bool      `json:"paid"`
	CustomerID    string    `json:"customer,omitempty"`
	Description   string    `json:"description,omitempty"`
	TransferGroup string    `json:"transfer_group,omitempty"`
	Created       time.Time `json:"created"`
}

func (c *Charge) Succeeded() bool {
	return c.Status == ChargeStatusSucceeded
}

type Transfer struct {
	ID                string    `json:"id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	DestinationID     string    `json:"destination"`
	SourceTransaction string    `json:"source_transaction,omitempty"`
	Created           time.Time `json:"created"`
}

type Refund struct {
	ID       string `json:"id"`
	ChargeID string `json:"charge"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

type CustomerRequest struct {
	Email       string
	Description string
}

type AccountRequest struct {
	Country string
	Email   string
}

type ChargeRequest struct {
	CustomerID     string
	Amount         int64
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

// TransferRequest moves Amount to a connected account, funded by the charge
// SourceTransaction.
type TransferRequest struct {
	AccountID         string
	Amount            int64
	SourceTransaction string
	Description       string
	TransferGroup     string
	IdempotencyKey    string
}
