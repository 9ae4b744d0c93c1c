package service

import (
	"fmt"
	"strings"

	"launchpad/internal/domain"
)

const (
	// MinDescriptionLength is the threshold below which a description earns
	// a warning rather than passing.
	MinDescriptionLength = 10
)

// supportedCurrencies is the allow-list for the currency check.
var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"gbp": true,
	"cad": true,
	"aud": true,
}

// Validate inspects a product and returns one result per named rule. It is
// deterministic and total: malformed input produces failed checks, never an
// error.
func Validate(product *domain.Product) []domain.ValidationCheck {
	checks := make([]domain.ValidationCheck, 0, 5)

	if strings.TrimSpace(product.Name) == "" {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckNamePresence,
			Status:   domain.CheckStatusFailed,
			Message:  "Product name is required",
			Critical: true,
		})
	} else {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckNamePresence,
			Status:   domain.CheckStatusPassed,
			Message:  "Product has a name",
			Critical: true,
		})
	}

	if product.Price.IsPositive() {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckPositivePrice,
			Status:   domain.CheckStatusPassed,
			Message:  "Price is positive",
			Critical: true,
		})
	} else {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckPositivePrice,
			Status:   domain.CheckStatusFailed,
			Message:  "Price must be greater than zero",
			Critical: true,
		})
	}

	if product.TestProductID == nil || *product.TestProductID == "" {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckTestLinkage,
			Status:   domain.CheckStatusFailed,
			Message:  "Product has not been created in the test environment",
			Critical: true,
		})
	} else {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckTestLinkage,
			Status:   domain.CheckStatusPassed,
			Message:  "Product is linked to the test environment",
			Critical: true,
		})
	}

	if product.Description == nil || len(strings.TrimSpace(*product.Description)) < MinDescriptionLength {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckDescription,
			Status:   domain.CheckStatusWarning,
			Message:  fmt.Sprintf("Description is missing or shorter than %d characters", MinDescriptionLength),
			Critical: false,
		})
	} else {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckDescription,
			Status:   domain.CheckStatusPassed,
			Message:  "Description is adequate",
			Critical: false,
		})
	}

	if supportedCurrencies[strings.ToLower(product.Currency)] {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckCurrency,
			Status:   domain.CheckStatusPassed,
			Message:  "Currency is supported",
			Critical: false,
		})
	} else {
		checks = append(checks, domain.ValidationCheck{
			Name:     domain.CheckCurrency,
			Status:   domain.CheckStatusWarning,
			Message:  "Currency is missing or not in the supported list",
			Critical: false,
		})
	}

	return checks
}

// FailedCriticalChecks filters the checks that block a promotion.
func FailedCriticalChecks(checks []domain.ValidationCheck) []domain.ValidationCheck {
	failed := []domain.ValidationCheck{}
	for _, check := range checks {
		if check.Critical && check.Status == domain.CheckStatusFailed {
			failed = append(failed, check)
		}
	}
	return failed
}

// IsDeployable reports whether a product may be promoted: no critical check
// has failed.
func IsDeployable(checks []domain.ValidationCheck) bool {
	return len(FailedCriticalChecks(checks)) == 0
}
