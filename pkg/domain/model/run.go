package model

import (
	"fmt"

	"github.com/inbox-lab/autoreply/pkg/domain/types"
)

// RunState is the mutable record threaded through the batch state machine.
// It is created fresh at run start, mutated by every transition, and
// discarded once the run's result is returned. A run never processes two
// items concurrently, so the state has a single writer.
type RunState struct {
	RunID string
	Phase types.Phase

	Emails []*Email
	Cursor int

	// Per-item scratch, cleared after each send
	Current     *Email
	Intent      types.Intent
	Fragments   []*Fragment
	Reply       string
	SendOutcome *SendResult

	Succeeded int
	Failed    int

	LastError string
	Log       []string
}

// NewRunState creates a fresh run state for the given run identifier
func NewRunState(runID string) *RunState {
	return &RunState{
		RunID: runID,
		Phase: types.PhaseFetch,
	}
}

// Appendf appends a formatted line to the processing log
func (s *RunState) Appendf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// ClearScratch resets the per-item fields before moving to the next email
func (s *RunState) ClearScratch() {
	s.Current = nil
	s.Intent = ""
	s.Fragments = nil
	s.Reply = ""
	s.SendOutcome = nil
}

// Remaining reports whether any emails after the current cursor are left
func (s *RunState) Remaining() bool {
	return s.Cursor+1 < len(s.Emails)
}

// Result converts the final state into the run's result
func (s *RunState) Result() *RunResult {
	return &RunResult{
		Success:             true,
		RunID:               s.RunID,
		TotalEmails:         len(s.Emails),
		SuccessfulResponses: s.Succeeded,
		FailedResponses:     s.Failed,
		ProcessingLog:       s.Log,
		LastError:           s.LastError,
	}
}

// RunResult is the caller-facing outcome of one batch run
type RunResult struct {
	Success             bool     `json:"success"`
	RunID               string   `json:"run_id"`
	TotalEmails         int      `json:"total_emails"`
	SuccessfulResponses int      `json:"successful_responses"`
	FailedResponses     int      `json:"failed_responses"`
	ProcessingLog       []string `json:"processing_log"`
	LastError           string   `json:"last_error,omitempty"`
}

// SystemStatus reports component readiness and collaborator statistics
type SystemStatus struct {
	Cache          CacheStats `json:"cache"`
	Index          IndexStats `json:"index"`
	TransportReady bool       `json:"transport_ready"`
	IndexReady     bool       `json:"index_ready"`
	LLMReady       bool       `json:"llm_ready"`
	CacheReady     bool       `json:"cache_ready"`
}
