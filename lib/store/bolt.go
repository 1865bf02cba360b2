package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
)

var (
	entriesBucket = []byte("ledger_entries")
	clientsBucket = []byte("api_clients")
)

// BoltStore keeps the ledger in a single embedded database file. Every
// mutation runs inside one bolt write transaction, which bolt serializes.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, storageErr("open", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{entriesBucket, clientsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, storageErr("create buckets", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) CreateEntry(ctx context.Context, entry *models.LedgerEntry) (int64, error) {
	if err := s.CreateEntries(ctx, []*models.LedgerEntry{entry}); err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (s *BoltStore) CreateEntries(ctx context.Context, entries []*models.LedgerEntry) error {
	now := time.Now().UTC()
	assigned := make([]int64, len(entries))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		if err := checkSingleIn(b, entries); err != nil {
			return err
		}
		for i, entry := range entries {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			stored := *entry
			stored.ID = int64(seq)
			if stored.CreatedAt.IsZero() {
				stored.CreatedAt = now
			}
			if err := putJSON(b, itob(stored.ID), &stored); err != nil {
				return err
			}
			assigned[i] = stored.ID
		}
		return nil
	})
	if err == ErrDuplicatePayment {
		return err
	}
	if err != nil {
		return storageErr("create entries", err)
	}
	// only hand out ids once the write transaction committed
	for i, entry := range entries {
		entry.ID = assigned[i]
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
	}
	return nil
}

// checkSingleIn mirrors the partial unique index on IN entries in postgres.
func checkSingleIn(b *bolt.Bucket, entries []*models.LedgerEntry) error {
	incoming := map[string]bool{}
	for _, entry := range entries {
		if entry.Type != common.EntryTypeIn {
			continue
		}
		if incoming[entry.PaymentID] {
			return ErrDuplicatePayment
		}
		incoming[entry.PaymentID] = true
	}
	if len(incoming) == 0 {
		return nil
	}
	return b.ForEach(func(k, v []byte) error {
		var stored models.LedgerEntry
		if err := json.Unmarshal(v, &stored); err != nil {
			return err
		}
		if stored.Type == common.EntryTypeIn && incoming[stored.PaymentID] {
			return ErrDuplicatePayment
		}
		return nil
	})
}

func (s *BoltStore) FindOne(ctx context.Context, filter Filter) (*models.LedgerEntry, error) {
	var found *models.LedgerEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(entriesBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry models.LedgerEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if filter.Matches(&entry) {
				found = &entry
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("find entry", err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *BoltStore) FindMany(ctx context.Context, filter Filter) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).ForEach(func(k, v []byte) error {
			var entry models.LedgerEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if filter.Matches(&entry) {
				entries = append(entries, entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("find entries", err)
	}
	return entries, nil
}

func (s *BoltStore) Update(ctx context.Context, entry *models.LedgerEntry) error {
	return s.updateEntry(entry, func(*models.LedgerEntry) error { return nil })
}

func (s *BoltStore) Transition(ctx context.Context, entry *models.LedgerEntry, from string) error {
	return s.updateEntry(entry, func(stored *models.LedgerEntry) error {
		if stored.Status != from {
			return ErrStaleEntry
		}
		return nil
	})
}

func (s *BoltStore) updateEntry(entry *models.LedgerEntry, check func(stored *models.LedgerEntry) error) error {
	var updated models.LedgerEntry
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		key := itob(entry.ID)
		v := b.Get(key)
		if v == nil {
			return ErrNotFound
		}
		var stored models.LedgerEntry
		if err := json.Unmarshal(v, &stored); err != nil {
			return err
		}
		if err := check(&stored); err != nil {
			return err
		}
		updated = *entry
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt.Time = time.Now().UTC()
		return putJSON(b, key, &updated)
	})
	if err == ErrNotFound || err == ErrStaleEntry {
		return err
	}
	if err != nil {
		return storageErr("update entry", err)
	}
	entry.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *BoltStore) CreateClient(ctx context.Context, client *models.Client) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(clientsBucket)
		if b.Get([]byte(client.ClientID)) != nil {
			return ErrDuplicateClient
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		client.ID = int64(seq)
		if client.CreatedAt.IsZero() {
			client.CreatedAt = time.Now().UTC()
		}
		return putJSON(b, []byte(client.ClientID), client)
	})
	if err == ErrDuplicateClient {
		return err
	}
	return storageErr("create client", err)
}

func (s *BoltStore) FindClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client *models.Client
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(clientsBucket).Get([]byte(clientID))
		if v == nil {
			return nil
		}
		client = &models.Client{}
		return json.Unmarshal(v, client)
	})
	if err != nil {
		return nil, storageErr("find client", err)
	}
	if client == nil {
		return nil, ErrNotFound
	}
	return client, nil
}

func (s *BoltStore) UpdateClient(ctx context.Context, client *models.Client) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(clientsBucket)
		if b.Get([]byte(client.ClientID)) == nil {
			return ErrNotFound
		}
		return putJSON(b, []byte(client.ClientID), client)
	})
	if err == ErrNotFound {
		return err
	}
	return storageErr("update client", err)
}

func putJSON(b *bolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

// itob keeps keys ordered by id under bolt's byte-wise cursor ordering.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

var _ Store = (*BoltStore)(nil)
