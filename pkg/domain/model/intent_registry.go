package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
)

// IntentProfile binds an intent to the keyword set used for classification
// and retrieval re-ranking.
type IntentProfile struct {
	Intent   types.Intent
	Keywords []string
}

// IntentRegistry holds intent profiles in declaration order. Declaration
// order breaks keyword-score ties: the earlier profile wins.
type IntentRegistry struct {
	profiles []IntentProfile
	byIntent map[types.Intent][]string
}

// NewIntentRegistry creates a registry from the given profiles, preserving
// their order. Each intent must be valid and may appear only once.
func NewIntentRegistry(profiles []IntentProfile) (*IntentRegistry, error) {
	r := &IntentRegistry{
		byIntent: make(map[types.Intent][]string, len(profiles)),
	}
	for _, p := range profiles {
		if !p.Intent.IsValid() {
			return nil, goerr.New("unknown intent in profile", goerr.V("intent", p.Intent))
		}
		if _, exists := r.byIntent[p.Intent]; exists {
			return nil, goerr.New("duplicate intent profile", goerr.V("intent", p.Intent))
		}
		keywords := make([]string, len(p.Keywords))
		copy(keywords, p.Keywords)
		r.profiles = append(r.profiles, IntentProfile{Intent: p.Intent, Keywords: keywords})
		r.byIntent[p.Intent] = keywords
	}
	return r, nil
}

// DefaultIntentRegistry returns the built-in intent profiles
func DefaultIntentRegistry() *IntentRegistry {
	r, err := NewIntentRegistry([]IntentProfile{
		{
			Intent:   types.IntentBilling,
			Keywords: []string{"billing", "payment", "invoice", "refund", "subscription", "charge", "cost", "price"},
		},
		{
			Intent:   types.IntentTechnicalSupport,
			Keywords: []string{"error", "bug", "problem", "issue", "broken", "not working", "help", "technical"},
		},
		{
			Intent:   types.IntentFeatureRequest,
			Keywords: []string{"feature", "request", "suggestion", "improvement", "new", "add", "enhancement"},
		},
		{
			Intent:   types.IntentGeneral,
			Keywords: []string{"question", "info", "information", "contact", "hours", "address", "about"},
		},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Profiles returns the profiles in declaration order
func (r *IntentRegistry) Profiles() []IntentProfile {
	return r.profiles
}

// Keywords returns the keyword set for the given intent, or nil if the
// intent has no profile.
func (r *IntentRegistry) Keywords(intent types.Intent) []string {
	return r.byIntent[intent]
}
