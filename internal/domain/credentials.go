package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreatorCredentials holds a creator's connected provider accounts, one per
// environment. A nil account ID means the environment is not connected yet.
type CreatorCredentials struct {
	CreatorID     uuid.UUID `json:"creator_id" db:"creator_id"`
	TestAccountID *string   `json:"test_account_id,omitempty" db:"test_account_id"`
	LiveAccountID *string   `json:"live_account_id,omitempty" db:"live_account_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// HasTest reports whether the test environment is connected.
func (c *CreatorCredentials) HasTest() bool {
	return c.TestAccountID != nil && *c.TestAccountID != ""
}

// HasLive reports whether the production environment is connected.
func (c *CreatorCredentials) HasLive() bool {
	return c.LiveAccountID != nil && *c.LiveAccountID != ""
}
