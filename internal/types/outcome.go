package types

import "time"

// Outcome is the terminal result of processing a single job.
type Outcome string

// Terminal outcomes recorded against a run's aggregate statistics.
const (
	OutcomePassedFirstTry    Outcome = "passed-first-try"
	OutcomePassedAfterRefine Outcome = "passed-after-refine"
	OutcomeFailed            Outcome = "failed"
)

// FailReason explains why a job reached the FAILED terminal state.
type FailReason string

// Failure reasons attached to FAILED outcomes.
const (
	ReasonDraftUnrecoverable   FailReason = "draft-unrecoverable"
	ReasonRefineUnrecoverable  FailReason = "refine-unrecoverable"
	ReasonQualityGateExhausted FailReason = "quality-gate-exhausted"
	ReasonInvalidInput         FailReason = "invalid-input"
	ReasonCancelled            FailReason = "cancelled"
)

// JobOutcome pairs a job with its terminal result for run metadata.
type JobOutcome struct {
	JobID      string     `json:"job_id"`
	Outcome    Outcome    `json:"outcome"`
	Reason     FailReason `json:"reason,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// RunStats holds a run's aggregate counters. Attempted always equals
// PassedFirstTry + PassedAfterRefine + Failed once the run is finalized.
type RunStats struct {
	Attempted         int `json:"attempted"`
	PassedFirstTry    int `json:"passed_first_try"`
	PassedAfterRefine int `json:"passed_after_refine"`
	Failed            int `json:"failed"`
}
