package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		input string
		want  types.Intent
	}{
		{"billing", types.IntentBilling},
		{"Billing", types.IntentBilling},
		{"  TECHNICAL_SUPPORT  ", types.IntentTechnicalSupport},
		{"feature_request", types.IntentFeatureRequest},
		{"General", types.IntentGeneral},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			intent := gt.R1(types.ParseIntent(tc.input)).NoError(t)
			gt.Value(t, intent).Equal(tc.want)
		})
	}
}

func TestParseIntentInvalid(t *testing.T) {
	for _, input := range []string{"", "spam", "billing refund", "technical support"} {
		t.Run(input, func(t *testing.T) {
			_, err := types.ParseIntent(input)
			gt.Error(t, err)
		})
	}
}

func TestAllIntentsOrder(t *testing.T) {
	// Declaration order matters: it is the keyword-score tie-break order
	intents := types.AllIntents()
	gt.Array(t, intents).Length(4)
	gt.Value(t, intents[0]).Equal(types.IntentBilling)
	gt.Value(t, intents[3]).Equal(types.IntentGeneral)

	for _, intent := range intents {
		gt.Value(t, intent.IsValid()).Equal(true)
	}
}
