package integration_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/controllers"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/service"
	"github.com/letsco/splithub/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WebhookTestSuite struct {
	TestSuite
	webhookServer *httptest.Server
	eventChan     chan models.SettlementEvent
}

func (suite *WebhookTestSuite) SetupTest() {
	suite.TestSuite.SetupTest()

	suite.eventChan = make(chan models.SettlementEvent, 10)
	suite.webhookServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		event := models.SettlementEvent{}
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		suite.eventChan <- event
	}))
	suite.service.Publisher = service.NewWebhookNotifier(suite.webhookServer.URL, suite.service.Logger)
}

func (suite *WebhookTestSuite) TearDownTest() {
	suite.TestSuite.TearDownTest()
	suite.webhookServer.Close()
}

func (suite *WebhookTestSuite) seedCharge(chargeID string) {
	require.NoError(suite.T(), suite.service.Store.CreateEntries(context.Background(), []*models.LedgerEntry{
		{Type: common.EntryTypeIn, Status: common.EntryStatusWaiting, PaymentID: chargeID, AccountID: "cus_1", Amount: 10000, Description: "order-42"},
		{Type: common.EntryTypeOut, Status: common.EntryStatusWaiting, PaymentID: chargeID, AccountID: "acct_a", Amount: 6000, Description: "order-42"},
		{Type: common.EntryTypeOut, Status: common.EntryStatusWaiting, PaymentID: chargeID, AccountID: "acct_b", Amount: 3000, Description: "order-42"},
	}))
}

func (suite *WebhookTestSuite) postEvent(payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *WebhookTestSuite) TestChargeSucceededSettlesAndNotifies() {
	suite.seedCharge("ch_1")
	suite.gateway.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(ctx context.Context, req gateway.TransferRequest) (*gateway.Transfer, error) {
			return &gateway.Transfer{ID: "tr_" + req.AccountID, Amount: req.Amount, DestinationID: req.AccountID}, nil
		})

	payload := `{"id":"evt_1","type":"charge.succeeded","data":{"object":{"id":"ch_1","object":"charge"}}}`
	rec := suite.postEvent(payload)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	response := &controllers.WebhookResponseBody{}
	suite.decode(rec, response)
	assert.True(suite.T(), response.Success)
	assert.Len(suite.T(), response.Transfers, 2)

	suite.service.WaitForEvents()
	event := <-suite.eventChan
	assert.Equal(suite.T(), "ch_1", event.ChargeID)
	assert.Len(suite.T(), event.Transfers, 2)
	assert.NotEmpty(suite.T(), event.ID)

	assert.Equal(suite.T(), map[string]string{
		"IN:cus_1":   common.EntryStatusPaid,
		"OUT:acct_a": common.EntryStatusPaid,
		"OUT:acct_b": common.EntryStatusPaid,
	}, suite.ledger(store.Filter{PaymentID: "ch_1"}))

	// redelivery of the same event is acknowledged without new transfers or events
	rec = suite.postEvent(payload)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	response = &controllers.WebhookResponseBody{}
	suite.decode(rec, response)
	assert.True(suite.T(), response.Success)
	assert.Empty(suite.T(), response.Transfers)
	suite.service.WaitForEvents()
	assert.Empty(suite.T(), suite.eventChan)
}

func (suite *WebhookTestSuite) TestUnknownEventIsAcknowledged() {
	rec := suite.postEvent(`{"id":"evt_2","type":"customer.created","data":{"object":{"id":"cus_9","object":"customer"}}}`)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"success":true}`, rec.Body.String())
}

func (suite *WebhookTestSuite) TestChargeSucceededForUnknownCharge() {
	rec := suite.postEvent(`{"id":"evt_3","type":"charge.succeeded","data":{"object":{"id":"ch_unknown","object":"charge"}}}`)
	assertEmptyStatus(&suite.TestSuite, rec, http.StatusNotFound)
}

func (suite *WebhookTestSuite) TestMalformedEvents() {
	for _, payload := range []string{
		`not json`,
		`{"id":"evt_4"}`,
		`{"id":"evt_5","type":"charge.succeeded","data":{"object":{"id":"ch_1","object":"refund"}}}`,
		`{"id":"evt_6","type":"charge.succeeded","data":{"object":{"object":"charge"}}}`,
	} {
		rec := suite.postEvent(payload)
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, payload)
	}
}

func TestWebhookTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookTestSuite))
}
