package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
)

func TestPhaseValidity(t *testing.T) {
	for _, phase := range types.AllPhases() {
		gt.Value(t, phase.IsValid()).Equal(true)
	}
	gt.Value(t, types.Phase("unknown").IsValid()).Equal(false)
}

func TestPhaseTerminal(t *testing.T) {
	for _, phase := range types.AllPhases() {
		gt.Value(t, phase.IsTerminal()).Equal(phase == types.PhaseDone)
	}
}
