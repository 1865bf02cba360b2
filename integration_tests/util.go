package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/letsco/splithub/common"
	"github.com/letsco/splithub/db"
	"github.com/letsco/splithub/gateway/mock_gateway"
	"github.com/letsco/splithub/lib/service"
	"github.com/letsco/splithub/lib/store"
	"github.com/letsco/splithub/lib/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/ziflex/lecho/v3"
)

const (
	testClientID     = "letsco-backoffice"
	testClientSecret = "correct horse battery staple"
)

func SplithubTestServiceInit(dir string, ctrl *gomock.Controller) (*service.SplithubService, *mock_gateway.MockClient, error) {
	c := &service.Config{
		DatabaseUri:          "bolt://" + filepath.Join(dir, "splithub.db"),
		JWTSecret:            []byte("SECRET"),
		JWTAccessTokenExpiry: 3600,
		DefaultRateLimit:     1000,
		StrictRateLimit:      1000,
		BurstRateLimit:       1000,
		PaymentRail:          common.RailSepaDebit,
		GatewayCacheTTL:      300,
	}

	ledger, _, err := db.OpenStore(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	gw := mock_gateway.NewMockClient(ctrl)
	logger := lecho.New(io.Discard, lecho.WithLevel(log.OFF))
	svc := service.NewSplithubService(c, ledger, gw, logger)

	if _, _, err := svc.CreateClient(context.Background(), testClientID, testClientSecret); err != nil {
		return nil, nil, err
	}
	return svc, gw, nil
}

// TestSuite drives the full echo stack of a fresh service per test.
type TestSuite struct {
	suite.Suite
	echo    *echo.Echo
	service *service.SplithubService
	gateway *mock_gateway.MockClient
	token   string
}

func (suite *TestSuite) SetupTest() {
	svc, gw, err := SplithubTestServiceInit(suite.T().TempDir(), gomock.NewController(suite.T()))
	require.NoError(suite.T(), err)
	suite.service = svc
	suite.gateway = gw

	e := transport.InitEcho(svc.Config, svc.Logger)
	transport.RegisterEndpoints(svc, e, nil, transport.CreateLoggingMiddleware(svc.Logger))
	suite.echo = e

	token, err := svc.GenerateToken(context.Background(), testClientID, testClientSecret)
	require.NoError(suite.T(), err)
	suite.token = token
}

func (suite *TestSuite) TearDownTest() {
	suite.service.WaitForEvents()
	suite.NoError(suite.service.Store.Close())
}

func (suite *TestSuite) do(method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	return suite.doWithHeaders(method, target, body, token, nil)
}

func (suite *TestSuite) doWithHeaders(method, target string, body interface{}, token string, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *TestSuite) decode(rec *httptest.ResponseRecorder, v interface{}) {
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(v))
}

func (suite *TestSuite) ledger(filter store.Filter) map[string]string {
	entries, err := suite.service.Store.FindMany(context.Background(), filter)
	require.NoError(suite.T(), err)
	statuses := map[string]string{}
	for _, entry := range entries {
		statuses[entry.Type+":"+entry.AccountID] = entry.Status
	}
	return statuses
}

func assertEmptyStatus(suite *TestSuite, rec *httptest.ResponseRecorder, status int) {
	assert.Equal(suite.T(), status, rec.Code)
	assert.Empty(suite.T(), rec.Body.String())
}
