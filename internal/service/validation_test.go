package service

import (
	"strings"
	"testing"

	"launchpad/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkByName(t *testing.T, checks []domain.ValidationCheck, name string) domain.ValidationCheck {
	t.Helper()
	for _, check := range checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %q not found in %v", name, checks)
	return domain.ValidationCheck{}
}

func TestValidate_WellFormedProductPassesEverything(t *testing.T) {
	description := "A complete subscription plan for professionals."
	product := proPlan(uuid.New())
	product.Description = &description

	checks := Validate(product)

	require.Len(t, checks, 5)
	for _, check := range checks {
		assert.Equal(t, domain.CheckStatusPassed, check.Status, "check %s", check.Name)
	}
	assert.True(t, IsDeployable(checks))
}

func TestValidate_Table(t *testing.T) {
	longEnough := "A sufficiently long description."
	short := "short"

	tests := []struct {
		name       string
		mutate     func(p *domain.Product)
		check      string
		wantStatus domain.CheckStatus
		deployable bool
	}{
		{
			name:       "blank name fails",
			mutate:     func(p *domain.Product) { p.Name = "   " },
			check:      domain.CheckNamePresence,
			wantStatus: domain.CheckStatusFailed,
			deployable: false,
		},
		{
			name:       "zero price fails",
			mutate:     func(p *domain.Product) { p.Price = decimal.Zero },
			check:      domain.CheckPositivePrice,
			wantStatus: domain.CheckStatusFailed,
			deployable: false,
		},
		{
			name:       "negative price fails",
			mutate:     func(p *domain.Product) { p.Price = decimal.NewFromInt(-5) },
			check:      domain.CheckPositivePrice,
			wantStatus: domain.CheckStatusFailed,
			deployable: false,
		},
		{
			name:       "missing test linkage fails",
			mutate:     func(p *domain.Product) { p.TestProductID = nil },
			check:      domain.CheckTestLinkage,
			wantStatus: domain.CheckStatusFailed,
			deployable: false,
		},
		{
			name:       "empty test product id fails",
			mutate:     func(p *domain.Product) { empty := ""; p.TestProductID = &empty },
			check:      domain.CheckTestLinkage,
			wantStatus: domain.CheckStatusFailed,
			deployable: false,
		},
		{
			name:       "missing description only warns",
			mutate:     func(p *domain.Product) { p.Description = nil },
			check:      domain.CheckDescription,
			wantStatus: domain.CheckStatusWarning,
			deployable: true,
		},
		{
			name:       "short description only warns",
			mutate:     func(p *domain.Product) { p.Description = &short },
			check:      domain.CheckDescription,
			wantStatus: domain.CheckStatusWarning,
			deployable: true,
		},
		{
			name:       "long description passes",
			mutate:     func(p *domain.Product) { p.Description = &longEnough },
			check:      domain.CheckDescription,
			wantStatus: domain.CheckStatusPassed,
			deployable: true,
		},
		{
			name:       "unknown currency only warns",
			mutate:     func(p *domain.Product) { p.Currency = "xyz" },
			check:      domain.CheckCurrency,
			wantStatus: domain.CheckStatusWarning,
			deployable: true,
		},
		{
			name:       "currency comparison ignores case",
			mutate:     func(p *domain.Product) { p.Currency = "USD" },
			check:      domain.CheckCurrency,
			wantStatus: domain.CheckStatusPassed,
			deployable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := proPlan(uuid.New())
			tt.mutate(product)

			checks := Validate(product)

			require.Len(t, checks, 5)
			assert.Equal(t, tt.wantStatus, checkByName(t, checks, tt.check).Status)
			assert.Equal(t, tt.deployable, IsDeployable(checks))
		})
	}
}

func TestValidate_EmptyProductReturnsChecksNotError(t *testing.T) {
	checks := Validate(&domain.Product{})

	require.Len(t, checks, 5)
	failed := FailedCriticalChecks(checks)
	assert.Len(t, failed, 3) // name, price, test linkage
	assert.False(t, IsDeployable(checks))
}

func TestProperty_ValidationIsDeterministicAndTotal(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("same product always yields identical checks", prop.ForAll(
		func(name string, priceCents int64, currency string, hasLinkage bool) bool {
			testID := "prod_test_abc"
			product := &domain.Product{
				ID:       uuid.New(),
				Name:     name,
				Price:    decimal.NewFromInt(priceCents).Div(decimal.NewFromInt(100)),
				Currency: currency,
				Kind:     domain.ProductKindOneTime,
			}
			if hasLinkage {
				product.TestProductID = &testID
			}

			first := Validate(product)
			second := Validate(product)

			if len(first) != 5 || len(second) != 5 {
				t.Logf("FAIL: expected 5 checks, got %d and %d", len(first), len(second))
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					t.Logf("FAIL: check %d differs between runs: %v vs %v", i, first[i], second[i])
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		gen.Int64Range(-10_000, 10_000_000),
		gen.RegexMatch(`[a-zA-Z]{0,4}`),
		gen.Bool(),
	))

	properties.Property("deployable products never carry a failed critical check", prop.ForAll(
		func(name string, priceCents int64, hasLinkage bool) bool {
			testID := "prod_test_abc"
			product := &domain.Product{
				ID:       uuid.New(),
				Name:     name,
				Price:    decimal.NewFromInt(priceCents).Div(decimal.NewFromInt(100)),
				Currency: "usd",
				Kind:     domain.ProductKindOneTime,
			}
			if hasLinkage {
				product.TestProductID = &testID
			}

			checks := Validate(product)
			deployable := IsDeployable(checks)

			expected := strings.TrimSpace(name) != "" && priceCents > 0 && hasLinkage
			if deployable != expected {
				t.Logf("FAIL: deployable=%v expected=%v for name=%q price=%d linkage=%v",
					deployable, expected, name, priceCents, hasLinkage)
				return false
			}
			return true
		},
		gen.AnyString(),
		gen.Int64Range(-10_000, 10_000_000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"29.99", 2999},
		{"0.50", 50},
		{"10", 1000},
		{"19.999", 2000}, // rounds, never truncates
		{"0.005", 1},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			product := &domain.Product{Price: decimal.RequireFromString(tt.price)}
			assert.Equal(t, tt.want, product.MinorUnits())
		})
	}
}
