package payments

import "context"

// Environment selects which provider environment a call is scoped to.
type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentLive Environment = "live"
)

// Recurring describes the billing interval for subscription prices.
type Recurring struct {
	Interval string `json:"interval"`
}

// ProductParams are the fields sent when creating a provider product.
type ProductParams struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Active      bool              `json:"active"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PriceParams are the fields sent when creating a provider price.
type PriceParams struct {
	ProductID  string            `json:"product"`
	UnitAmount int64             `json:"unit_amount"`
	Currency   string            `json:"currency"`
	Recurring  *Recurring        `json:"recurring,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ProductResult is the provider's response to a product creation.
type ProductResult struct {
	ID string `json:"id"`
}

// PriceResult is the provider's response to a price creation.
type PriceResult struct {
	ID string `json:"id"`
}

// Provider is the narrow surface of the payment processor the deployment
// pipeline depends on. Calls are scoped to an environment and a connected
// merchant account.
type Provider interface {
	CreateProduct(ctx context.Context, env Environment, accountID string, params ProductParams) (*ProductResult, error)
	CreatePrice(ctx context.Context, env Environment, accountID string, params PriceParams) (*PriceResult, error)
}
