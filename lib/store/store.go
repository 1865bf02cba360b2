package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsco/splithub/db/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	// ErrStaleEntry is returned by Transition when the stored status no longer
	// matches the expected one.
	ErrStaleEntry       = errors.New("ledger entry status changed concurrently")
	ErrDuplicateClient  = errors.New("client id already taken")
	// ErrDuplicatePayment is returned by CreateEntries when the payment
	// already has an IN entry.
	ErrDuplicatePayment = errors.New("payment already recorded")
)

// StorageError wraps every failure coming from the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Filter is an exact-match conjunction; zero values are ignored.
type Filter struct {
	Type          string
	Status        string
	PaymentID     string
	CreatedBefore time.Time
}

func (f Filter) Matches(e *models.LedgerEntry) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.PaymentID != "" && e.PaymentID != f.PaymentID {
		return false
	}
	if !f.CreatedBefore.IsZero() && !e.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

type LedgerStore interface {
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) (int64, error)
	// CreateEntries inserts all entries or none of them. A payment holds at
	// most one IN entry.
	CreateEntries(ctx context.Context, entries []*models.LedgerEntry) error
	FindOne(ctx context.Context, filter Filter) (*models.LedgerEntry, error)
	FindMany(ctx context.Context, filter Filter) ([]models.LedgerEntry, error)
	Update(ctx context.Context, entry *models.LedgerEntry) error
	// Transition persists entry only if the stored status still equals from.
	Transition(ctx context.Context, entry *models.LedgerEntry, from string) error
}

type ClientStore interface {
	CreateClient(ctx context.Context, client *models.Client) error
	FindClient(ctx context.Context, clientID string) (*models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
}

type Store interface {
	LedgerStore
	ClientStore
	Close() error
}
