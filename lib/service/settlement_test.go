package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var splitsAB = []Split{{AccountID: "acct_A", Amount: 6000}, {AccountID: "acct_B", Amount: 3000}}

func transferStub(counter *int32, delay time.Duration) func(ctx context.Context, req gateway.TransferRequest) (*gateway.Transfer, error) {
	return func(ctx context.Context, req gateway.TransferRequest) (*gateway.Transfer, error) {
		n := atomic.AddInt32(counter, 1)
		time.Sleep(delay)
		return &gateway.Transfer{
			ID:                fmt.Sprintf("tr_%d", n),
			Amount:            req.Amount,
			DestinationID:     req.AccountID,
			SourceTransaction: req.SourceTransaction,
		}, nil
	}
}

func assertFullySettled(t *testing.T, env *testEnv, chargeID string) {
	out := env.entries(t, store.Filter{Type: common.EntryTypeOut, PaymentID: chargeID})
	for _, entry := range out {
		assert.Equal(t, common.EntryStatusPaid, entry.Status)
		assert.NotEmpty(t, entry.TransferID)
	}
	in := env.entries(t, store.Filter{Type: common.EntryTypeIn, PaymentID: chargeID})
	require.Len(t, in, 1)
	assert.Equal(t, common.EntryStatusPaid, in[0].Status)
}

func TestSettleChargePaysEveryWaitingEntry(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	var calls int32
	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(ctx context.Context, req gateway.TransferRequest) (*gateway.Transfer, error) {
			assert.Equal(t, "ch_1", req.SourceTransaction)
			assert.Equal(t, "order-1", req.Description)
			assert.NotEmpty(t, req.IdempotencyKey)
			return transferStub(&calls, 0)(ctx, req)
		})

	settled, err := env.svc.SettleCharge(context.Background(), "ch_1")
	require.NoError(t, err)
	assert.Equal(t, []models.SettledTransfer{
		{Amount: 6000, AccountID: "acct_A", TransferID: "tr_1"},
		{Amount: 3000, AccountID: "acct_B", TransferID: "tr_2"},
	}, settled)
	assertFullySettled(t, env, "ch_1")
}

func TestSettleChargeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	var calls int32
	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(transferStub(&calls, 0))

	first, err := env.svc.SettleCharge(context.Background(), "ch_1")
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := env.svc.SettleCharge(context.Background(), "ch_1")
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.NotNil(t, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assertFullySettled(t, env, "ch_1")
}

func TestSettleUnknownCharge(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	settled, err := env.svc.SettleCharge(context.Background(), "ch_unknown")
	assert.ErrorIs(t, err, ErrChargeNotFound)
	assert.Nil(t, settled)

	for _, entry := range env.entries(t, store.Filter{}) {
		assert.Equal(t, common.EntryStatusWaiting, entry.Status)
		assert.True(t, entry.UpdatedAt.IsZero())
	}
}

func TestSettleChargeConcurrentDeliveries(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	var calls int32
	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(transferStub(&calls, 20*time.Millisecond))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var reported []models.SettledTransfer
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			settled, err := env.svc.SettleCharge(context.Background(), "ch_1")
			assert.NoError(t, err)
			mu.Lock()
			reported = append(reported, settled...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, reported, 2)
	assert.Equal(t, 0, env.svc.locks.size())
	assertFullySettled(t, env, "ch_1")
}

func TestSettleChargesInParallel(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)
	env.seedCharge(t, "ch_2", 5000, Split{AccountID: "acct_C", Amount: 5000})

	var calls int32
	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		Times(3).
		DoAndReturn(transferStub(&calls, 5*time.Millisecond))

	var wg sync.WaitGroup
	for _, chargeID := range []string{"ch_1", "ch_2"} {
		wg.Add(1)
		go func(chargeID string) {
			defer wg.Done()
			_, err := env.svc.SettleCharge(context.Background(), chargeID)
			assert.NoError(t, err)
		}(chargeID)
	}
	wg.Wait()

	assertFullySettled(t, env, "ch_1")
	assertFullySettled(t, env, "ch_2")
}

func TestSettleChargeResumesAfterTransferFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)
	ctx := context.Background()

	gomock.InOrder(
		env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
			Return(&gateway.Transfer{ID: "tr_A"}, nil),
		env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
			Return(nil, &gateway.Error{Op: "create transfer", Err: errors.New("insufficient funds")}),
	)

	_, err := env.svc.SettleCharge(ctx, "ch_1")
	var gwErr *gateway.Error
	require.True(t, errors.As(err, &gwErr))

	paid := env.entries(t, store.Filter{Type: common.EntryTypeOut, Status: common.EntryStatusPaid, PaymentID: "ch_1"})
	require.Len(t, paid, 1)
	assert.Equal(t, "tr_A", paid[0].TransferID)
	waiting := env.entries(t, store.Filter{Type: common.EntryTypeOut, Status: common.EntryStatusWaiting, PaymentID: "ch_1"})
	require.Len(t, waiting, 1)
	assert.Empty(t, waiting[0].TransferID)
	in, err := env.store.FindOne(ctx, store.Filter{Type: common.EntryTypeIn, PaymentID: "ch_1"})
	require.NoError(t, err)
	assert.Equal(t, common.EntryStatusWaiting, in.Status)

	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req gateway.TransferRequest) (*gateway.Transfer, error) {
			assert.Equal(t, "acct_B", req.AccountID)
			return &gateway.Transfer{ID: "tr_B"}, nil
		})

	settled, err := env.svc.SettleCharge(ctx, "ch_1")
	require.NoError(t, err)
	assert.Equal(t, []models.SettledTransfer{{Amount: 3000, AccountID: "acct_B", TransferID: "tr_B"}}, settled)
	assertFullySettled(t, env, "ch_1")
}

func TestSettleChargePublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	publisher := newRecordingPublisher()
	env.svc.Publisher = publisher
	env.seedCharge(t, "ch_1", 10000, splitsAB...)

	var calls int32
	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(transferStub(&calls, 0))

	settled, err := env.svc.SettleCharge(context.Background(), "ch_1")
	require.NoError(t, err)
	env.svc.WaitForEvents()

	select {
	case event := <-publisher.events:
		assert.Equal(t, "ch_1", event.ChargeID)
		assert.Equal(t, settled, event.Transfers)
		assert.NotEmpty(t, event.ID)
	default:
		t.Fatal("no settlement event published")
	}

	_, err = env.svc.SettleCharge(context.Background(), "ch_1")
	require.NoError(t, err)
	env.svc.WaitForEvents()
	assert.Len(t, publisher.events, 0)
}

func TestSettleChargeKeepsChargeWaitingWithCancelledPayout(t *testing.T) {
	env := newTestEnv(t)
	env.seedCharge(t, "ch_1", 10000, splitsAB...)
	ctx := context.Background()

	cancelled, err := env.store.FindOne(ctx, store.Filter{Type: common.EntryTypeOut, PaymentID: "ch_1"})
	require.NoError(t, err)
	cancelled.Status = common.EntryStatusCancelled
	require.NoError(t, env.store.Update(ctx, cancelled))

	env.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
		Return(&gateway.Transfer{ID: "tr_B"}, nil)

	settled, err := env.svc.SettleCharge(ctx, "ch_1")
	require.NoError(t, err)
	assert.Equal(t, []models.SettledTransfer{{Amount: 3000, AccountID: "acct_B", TransferID: "tr_B"}}, settled)

	in, err := env.store.FindOne(ctx, store.Filter{Type: common.EntryTypeIn, PaymentID: "ch_1"})
	require.NoError(t, err)
	assert.Equal(t, common.EntryStatusWaiting, in.Status)
}
