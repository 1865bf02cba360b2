package service

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/random"
	"github.com/letsco/splithub/db/models"
	"github.com/letsco/splithub/lib/security"
	"github.com/letsco/splithub/lib/store"
	"github.com/letsco/splithub/lib/tokens"
	"github.com/uptrace/bun"
)

const generatedSecretLength = 32

// GenerateToken checks the client credentials and issues an access token.
// Failed attempts are counted on the client record.
func (svc *SplithubService) GenerateToken(ctx context.Context, clientID, secret string) (string, error) {
	if clientID == "" || secret == "" {
		return "", invalid("credentials", "client id and secret are required")
	}

	client, err := svc.Store.FindClient(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrBadAuth
	}
	if err != nil {
		return "", err
	}
	if client.Deactivated {
		svc.Logger.Warnf("Login attempt by deactivated client client_id:%s", clientID)
		return "", ErrBadAuth
	}

	if !security.CheckSecret(client.SecretHash, secret) {
		client.FailedLoginCount++
		if err := svc.Store.UpdateClient(ctx, client); err != nil {
			svc.Logger.Errorf("Failed to record failed login client_id:%s error:%v", clientID, err)
		}
		return "", ErrBadAuth
	}

	client.FailedLoginCount = 0
	client.LastLoginAt = bun.NullTime{Time: time.Now()}
	if err := svc.Store.UpdateClient(ctx, client); err != nil {
		svc.Logger.Errorf("Failed to record login client_id:%s error:%v", clientID, err)
	}

	return tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, client)
}

// CreateClient registers an API client. A random secret is generated when
// none is given; the plain secret is only ever returned here.
func (svc *SplithubService) CreateClient(ctx context.Context, clientID, secret string) (*models.Client, string, error) {
	if clientID == "" {
		return nil, "", invalid("client_id", "is required")
	}
	if secret == "" {
		secret = random.String(generatedSecretLength, random.Alphanumeric)
	}
	hash, err := security.HashSecret(secret)
	if err != nil {
		return nil, "", err
	}
	client := &models.Client{
		ClientID:   clientID,
		SecretHash: hash,
	}
	if err := svc.Store.CreateClient(ctx, client); err != nil {
		return nil, "", err
	}
	return client, secret, nil
}
