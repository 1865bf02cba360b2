package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/letsco/splithub/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/ziflex/lecho/v3"
)

func settlementEvent() *models.SettlementEvent {
	return &models.SettlementEvent{
		ID:         "evt_1",
		ChargeID:   "ch_1",
		Transfers:  []models.SettledTransfer{{Amount: 6000, AccountID: "acct_A", TransferID: "tr_1"}},
		OccurredAt: time.Now().UTC(),
	}
}

func TestWebhookNotifierRetriesServerErrors(t *testing.T) {
	var calls int32
	var received models.SettlementEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, lecho.New(io.Discard, lecho.WithLevel(log.OFF)))
	err := notifier.PublishSettlement(context.Background(), settlementEvent())
	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "ch_1", received.ChargeID)
	assert.Equal(t, "tr_1", received.Transfers[0].TransferID)
}

func TestWebhookNotifierGivesUpOnClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, lecho.New(io.Discard, lecho.WithLevel(log.OFF)))
	err := notifier.PublishSettlement(context.Background(), settlementEvent())
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type failingPublisher struct{}

func (failingPublisher) PublishSettlement(ctx context.Context, event *models.SettlementEvent) error {
	return assert.AnError
}

func TestPublishersFanOut(t *testing.T) {
	first, second := newRecordingPublisher(), newRecordingPublisher()
	publishers := Publishers{first, failingPublisher{}, second}

	err := publishers.PublishSettlement(context.Background(), settlementEvent())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}
