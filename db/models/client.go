package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Client : API client allowed to request bearer tokens
type Client struct {
	bun.BaseModel `bun:"table:api_clients,alias:ac"`

	ID               int64        `json:"id" bun:",pk,autoincrement"`
	ClientID         string       `json:"client_id" bun:",unique,notnull"`
	SecretHash       string       `json:"-" bun:",notnull"`
	Deactivated      bool         `json:"deactivated" bun:",notnull,default:false"`
	FailedLoginCount int          `json:"failed_login_count" bun:",notnull,default:0"`
	LastLoginAt      bun.NullTime `json:"last_login_at"`
	CreatedAt        time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
