package gateway

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SecretKey         string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	Statement         string `envconfig:"STRIPE_STATEMENT" default:"STRIPE"`
	WebhookSecret     string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	MaxNetworkRetries int64  `envconfig:"STRIPE_MAX_NETWORK_RETRIES" default:"2"`
	Currency          string `envconfig:"CURRENCY" default:"eur"`
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
