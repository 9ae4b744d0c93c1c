package domain

// CheckStatus is the outcome of a single validation rule
type CheckStatus string

const (
	CheckStatusPassed  CheckStatus = "passed"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusFailed  CheckStatus = "failed"
)

// Stable check names. Criticality is a property of the name, not the outcome.
const (
	CheckNamePresence    = "name_presence"
	CheckPositivePrice   = "positive_price"
	CheckTestLinkage     = "test_linkage"
	CheckDescription     = "description_adequacy"
	CheckCurrency        = "currency_validity"
)

// ValidationCheck is the result of one named rule applied to a product.
type ValidationCheck struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Critical bool        `json:"critical"`
}
