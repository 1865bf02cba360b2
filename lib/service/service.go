package service

import (
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/letsco/splithub/gateway"
	"github.com/letsco/splithub/lib/store"
	"github.com/ziflex/lecho/v3"
)

type SplithubService struct {
	Config    *Config
	Store     store.Store
	Gateway   gateway.Client
	Logger    *lecho.Logger
	Publisher EventPublisher

	locks   chargeLocks
	pending sync.WaitGroup
}

func NewSplithubService(c *Config, s store.Store, gw gateway.Client, logger *lecho.Logger) *SplithubService {
	return &SplithubService{
		Config:  c,
		Store:   s,
		Gateway: gw,
		Logger:  logger,
	}
}

func (svc *SplithubService) captureErr(err error, extras map[string]interface{}) {
	svc.Logger.Error(err)
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtras(extras)
		sentry.CaptureException(err)
	})
}
