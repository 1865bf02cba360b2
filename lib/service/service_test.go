package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/gommon/log"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/gateway/mock_gateway"
	"github.com/letsco/splithub/lib/store"
	"github.com/stretchr/testify/require"
	"github.com/ziflex/lecho/v3"
)

type testEnv struct {
	svc     *SplithubService
	gateway *mock_gateway.MockClient
	store   *store.BoltStore
}

func newTestEnv(t *testing.T) *testEnv {
	ctrl := gomock.NewController(t)
	s, err := store.OpenBolt(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	gw := mock_gateway.NewMockClient(ctrl)
	svc := NewSplithubService(&Config{
		JWTSecret:            []byte("SECRET"),
		JWTAccessTokenExpiry: 3600,
		PaymentRail:          common.RailSepaDebit,
	}, s, gw, lecho.New(io.Discard, lecho.WithLevel(log.OFF)))
	return &testEnv{svc: svc, gateway: gw, store: s}
}

// seedCharge stores the ledger of a split charge without going through the gateway.
func (env *testEnv) seedCharge(t *testing.T, chargeID string, total int64, splits ...Split) {
	entries := []*models.LedgerEntry{{
		Type:      common.EntryTypeIn,
		Status:    common.EntryStatusWaiting,
		PaymentID: chargeID,
		AccountID: "cus_1",
		Amount:    total,
	}}
	for _, split := range splits {
		entries = append(entries, &models.LedgerEntry{
			Type:        common.EntryTypeOut,
			Status:      common.EntryStatusWaiting,
			PaymentID:   chargeID,
			AccountID:   split.AccountID,
			Amount:      split.Amount,
			Description: "order-1",
		})
	}
	require.NoError(t, env.store.CreateEntries(context.Background(), entries))
}

func (env *testEnv) entries(t *testing.T, filter store.Filter) []models.LedgerEntry {
	entries, err := env.store.FindMany(context.Background(), filter)
	require.NoError(t, err)
	return entries
}

// recordingPublisher collects published events on a channel.
type recordingPublisher struct {
	events chan *models.SettlementEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan *models.SettlementEvent, 10)}
}

func (p *recordingPublisher) PublishSettlement(ctx context.Context, event *models.SettlementEvent) error {
	p.events <- event
	return nil
}
