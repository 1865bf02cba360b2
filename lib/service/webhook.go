package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/letsco/splithub/db/models"
	"github.com/ziflex/lecho/v3"
)

// WebhookNotifier posts settlement events to the client's webhook url.
type WebhookNotifier struct {
	Url            string
	HttpClient     *http.Client
	Logger         *lecho.Logger
	MaxElapsedTime time.Duration
}

func NewWebhookNotifier(url string, logger *lecho.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		Url:            url,
		HttpClient:     &http.Client{Timeout: 10 * time.Second},
		Logger:         logger,
		MaxElapsedTime: time.Minute,
	}
}

func (n *WebhookNotifier) PublishSettlement(ctx context.Context, event *models.SettlementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	post := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := n.HttpClient.Do(req)
		if err != nil {
			n.Logger.Warnf("Webhook delivery failed event_id:%s error:%v", event.ID, err)
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("webhook status code was %d, body: %s", resp.StatusCode, msg)
		// 4xx responses are final
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		n.Logger.Warnf("Webhook delivery failed event_id:%s error:%v", event.ID, err)
		return err
	}

	expontentialBackoff := backoff.NewExponentialBackOff()
	expontentialBackoff.InitialInterval = 200 * time.Millisecond
	expontentialBackoff.MaxInterval = time.Second * 10
	expontentialBackoff.MaxElapsedTime = n.MaxElapsedTime

	return backoff.Retry(post, backoff.WithContext(expontentialBackoff, ctx))
}
