package run

import "fmt"

// RunCreationError indicates the run directory could not be created, most
// often because a run with the same name already exists.
type RunCreationError struct {
	Dir     string
	Message string
	Cause   error
}

func (e *RunCreationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("run creation error (%s): %s: %v", e.Dir, e.Message, e.Cause)
	}
	return fmt.Sprintf("run creation error (%s): %s", e.Dir, e.Message)
}

func (e *RunCreationError) Unwrap() error {
	return e.Cause
}

// DuplicateOutcomeError indicates a second outcome was recorded for a job
// that already has one.
type DuplicateOutcomeError struct {
	JobID string
}

func (e *DuplicateOutcomeError) Error() string {
	return fmt.Sprintf("duplicate outcome for job %s", e.JobID)
}

// InconsistentStateError indicates the run was mutated after it had already
// been finalized.
type InconsistentStateError struct {
	Message string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent run state: %s", e.Message)
}
