package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductKind describes how a product is billed
type ProductKind string

const (
	ProductKindOneTime      ProductKind = "one_time"
	ProductKindSubscription ProductKind = "subscription"
	ProductKindUsageBased   ProductKind = "usage_based"
)

// Product represents a creator-owned sellable item. Products are created in
// the test environment and gain live identifiers when promoted to production.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CreatorID   uuid.UUID       `json:"creator_id" db:"creator_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    string          `json:"currency" db:"currency"`
	Kind        ProductKind     `json:"kind" db:"kind"`

	// Test-environment provider identifiers, set when the product is first
	// materialized in the sandbox.
	TestProductID *string `json:"test_product_id,omitempty" db:"test_product_id"`
	TestPriceID   *string `json:"test_price_id,omitempty" db:"test_price_id"`

	// Production-environment provider identifiers. Both are set in a single
	// update during promotion, never one without the other.
	LiveProductID *string `json:"live_product_id,omitempty" db:"live_product_id"`
	LivePriceID   *string `json:"live_price_id,omitempty" db:"live_price_id"`

	Active     bool       `json:"active" db:"active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty" db:"promoted_at"`
}

// IsLive reports whether the product has been promoted to production.
func (p *Product) IsLive() bool {
	return p.LiveProductID != nil && p.LivePriceID != nil
}

// MinorUnits converts the decimal price to the provider's integer
// minor-unit representation (e.g. 29.99 USD -> 2999 cents).
func (p *Product) MinorUnits() int64 {
	return p.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
