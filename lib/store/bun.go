package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/letsco/splithub/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// BunStore keeps the ledger in postgres.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) CreateEntry(ctx context.Context, entry *models.LedgerEntry) (int64, error) {
	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return 0, storageErr("create entry", err)
	}
	return entry.ID, nil
}

func (s *BunStore) CreateEntries(ctx context.Context, entries []*models.LedgerEntry) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, entry := range entries {
			if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return ErrDuplicatePayment
	}
	return storageErr("create entries", err)
}

func (s *BunStore) FindOne(ctx context.Context, filter Filter) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	query := applyFilter(s.db.NewSelect().Model(&entry), filter)
	err := query.Order("le.id ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find entry", err)
	}
	return &entry, nil
}

func (s *BunStore) FindMany(ctx context.Context, filter Filter) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	query := applyFilter(s.db.NewSelect().Model(&entries), filter)
	if err := query.Order("le.id ASC").Scan(ctx); err != nil {
		return nil, storageErr("find entries", err)
	}
	return entries, nil
}

func (s *BunStore) Update(ctx context.Context, entry *models.LedgerEntry) error {
	res, err := s.db.NewUpdate().Model(entry).WherePK().Exec(ctx)
	if err != nil {
		return storageErr("update entry", err)
	}
	return checkAffected(res, ErrNotFound)
}

func (s *BunStore) Transition(ctx context.Context, entry *models.LedgerEntry, from string) error {
	res, err := s.db.NewUpdate().
		Model(entry).
		Column("status", "transfer_id", "updated_at").
		WherePK().
		Where("le.status = ?", from).
		Exec(ctx)
	if err != nil {
		return storageErr("transition entry", err)
	}
	return checkAffected(res, ErrStaleEntry)
}

func (s *BunStore) CreateClient(ctx context.Context, client *models.Client) error {
	_, err := s.db.NewInsert().Model(client).Exec(ctx)
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
		return ErrDuplicateClient
	}
	return storageErr("create client", err)
}

func (s *BunStore) FindClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	err := s.db.NewSelect().Model(&client).Where("ac.client_id = ?", clientID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find client", err)
	}
	return &client, nil
}

func (s *BunStore) UpdateClient(ctx context.Context, client *models.Client) error {
	res, err := s.db.NewUpdate().Model(client).WherePK().Exec(ctx)
	if err != nil {
		return storageErr("update client", err)
	}
	return checkAffected(res, ErrNotFound)
}

func applyFilter(query *bun.SelectQuery, filter Filter) *bun.SelectQuery {
	if filter.Type != "" {
		query = query.Where("le.type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("le.status = ?", filter.Status)
	}
	if filter.PaymentID != "" {
		query = query.Where("le.payment_id = ?", filter.PaymentID)
	}
	if !filter.CreatedBefore.IsZero() {
		query = query.Where("le.created_at < ?", filter.CreatedBefore)
	}
	return query
}

// isUniqueViolation reports a postgres unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

func checkAffected(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("rows affected", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

var _ Store = (*BunStore)(nil)
