package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Intent represents the category of an inbound email
type Intent string

const (
	IntentBilling          Intent = "billing"
	IntentTechnicalSupport Intent = "technical_support"
	IntentFeatureRequest   Intent = "feature_request"
	IntentGeneral          Intent = "general"
)

// AllIntents returns all valid intents in declaration order.
// The order is significant: keyword-score ties are resolved in favor of
// the earlier intent.
func AllIntents() []Intent {
	return []Intent{
		IntentBilling,
		IntentTechnicalSupport,
		IntentFeatureRequest,
		IntentGeneral,
	}
}

// IsValid checks if the intent is valid
func (i Intent) IsValid() bool {
	switch i {
	case IntentBilling,
		IntentTechnicalSupport,
		IntentFeatureRequest,
		IntentGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent
func (i Intent) String() string {
	return string(i)
}

// ParseIntent parses a string into an Intent. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseIntent(s string) (Intent, error) {
	intent := Intent(strings.ToLower(strings.TrimSpace(s)))
	if !intent.IsValid() {
		return "", goerr.New("invalid intent", goerr.V("intent", s))
	}
	return intent, nil
}
