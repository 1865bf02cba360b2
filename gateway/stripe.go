package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/ziflex/lecho/v3"
)

// StripeClient implements Client on top of the stripe API. All calls are
// bound to the api key of the config it was created with.
type StripeClient struct {
	config *Config
	api    *client.API
}

func NewStripeClient(c *Config, logger *lecho.Logger) *StripeClient {
	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(c.MaxNetworkRetries),
	}
	if logger != nil {
		backendConfig.LeveledLogger = logger
	}
	return &StripeClient{
		config: c,
		api:    client.New(c.SecretKey, stripe.NewBackendsWithConfig(backendConfig)),
	}
}

// VerifyWebhook checks the Stripe-Signature header of a webhook delivery.
// Without a configured secret every payload is accepted.
func (sc *StripeClient) VerifyWebhook(payload []byte, signature string) error {
	if sc.config.WebhookSecret == "" {
		return nil
	}
	return webhook.ValidatePayload(payload, signature, sc.config.WebhookSecret)
}

func (sc *StripeClient) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	customer, err := sc.api.Customers.Get(id, params)
	if err != nil {
		return nil, translateErr("get customer", err)
	}
	if customer.Deleted {
		return nil, fmt.Errorf("get customer %s: %w", id, ErrNotFound)
	}
	return toCustomer(customer), nil
}

func (sc *StripeClient) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	params := &stripe.CustomerParams{}
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	customer, err := sc.api.Customers.New(params)
	if err != nil {
		return nil, translateErr("create customer", err)
	}
	return toCustomer(customer), nil
}

func (sc *StripeClient) GetAccount(ctx context.Context, id string) (*Account, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	account, err := sc.api.Accounts.GetByID(id, params)
	if err != nil {
		return nil, translateErr("get account", err)
	}
	return toAccount(account), nil
}

func (sc *StripeClient) CreateAccount(ctx context.Context, req AccountRequest) (*Account, error) {
	params := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeCustom)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	if req.Country != "" {
		params.Country = stripe.String(req.Country)
	}
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
	}
	params.Context = ctx
	account, err := sc.api.Accounts.New(params)
	if err != nil {
		return nil, translateErr("create account", err)
	}
	return toAccount(account), nil
}

func (sc *StripeClient) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(sc.config.Currency),
		Customer: stripe.String(req.CustomerID),
	}
	// stripe rejects empty strings
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
		params.TransferGroup = stripe.String(req.Description)
	}
	if sc.config.Statement != "" {
		params.StatementDescriptor = stripe.String(sc.config.Statement)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx
	charge, err := sc.api.Charges.New(params)
	if err != nil {
		return nil, translateErr("create charge", err)
	}
	return toCharge(charge), nil
}

func (sc *StripeClient) RetrieveCharge(ctx context.Context, id string) (*Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	charge, err := sc.api.Charges.Get(id, params)
	if err != nil {
		return nil, translateErr("retrieve charge", err)
	}
	return toCharge(charge), nil
}

func (sc *StripeClient) RefundCharge(ctx context.Context, chargeID, idempotencyKey string) (*Refund, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeID),
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	params.Context = ctx
	refund, err := sc.api.Refunds.New(params)
	if err != nil {
		return nil, translateErr("refund charge", err)
	}
	return &Refund{
		ID:       refund.ID,
		ChargeID: chargeID,
		Amount:   refund.Amount,
		Status:   string(refund.Status),
	}, nil
}

func (sc *StripeClient) CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	params := &stripe.TransferParams{
		Amount:            stripe.Int64(req.Amount),
		Currency:          stripe.String(sc.config.Currency),
		Destination:       stripe.String(req.AccountID),
		SourceTransaction: stripe.String(req.SourceTransaction),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.TransferGroup != "" {
		params.TransferGroup = stripe.String(req.TransferGroup)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx
	transfer, err := sc.api.Transfers.New(params)
	if err != nil {
		return nil, translateErr("create transfer", err)
	}
	return &Transfer{
		ID:                transfer.ID,
		Amount:            transfer.Amount,
		Currency:          string(transfer.Currency),
		DestinationID:     req.AccountID,
		SourceTransaction: req.SourceTransaction,
		Created:           time.Unix(transfer.Created, 0),
	}, nil
}

func translateErr(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return &Error{Op: op, Code: string(stripeErr.Code), StatusCode: stripeErr.HTTPStatusCode, Err: err}
	}
	return &Error{Op: op, Err: err}
}

func toCustomer(c *stripe.Customer) *Customer {
	return &Customer{
		ID:          c.ID,
		Email:       c.Email,
		Description: c.Description,
		Created:     time.Unix(c.Created, 0),
	}
}

func toAccount(a *stripe.Account) *Account {
	return &Account{
		ID:             a.ID,
		Email:          a.Email,
		Country:        a.Country,
		Type:           string(a.Type),
		ChargesEnabled: a.ChargesEnabled,
		PayoutsEnabled: a.PayoutsEnabled,
		Created:        time.Unix(a.Created, 0),
	}
}

func toCharge(c *stripe.Charge) *Charge {
	charge := &Charge{
		ID:            c.ID,
		Amount:        c.Amount,
		Currency:      string(c.Currency),
		Status:        string(c.Status),
		Paid:          c.Paid,
		Description:   c.Description,
		TransferGroup: c.TransferGroup,
		Created:       time.Unix(c.Created, 0),
	}
	if c.Customer != nil {
		charge.CustomerID = c.Customer.ID
	}
	return charge
}

var _ Client = (*StripeClient)(nil)
