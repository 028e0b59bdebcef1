// Package artifacts persists run-scoped documents and verdicts and owns the
// on-disk layout and naming within a run.
package artifacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-agent/internal/types"
)

// ErrNotFound is returned when no document exists for a (job, stage) pair.
var ErrNotFound = errors.New("document not found")

// DocumentRef identifies a persisted document within a run.
type DocumentRef struct {
	ID    uuid.UUID   `json:"id"`
	JobID string      `json:"job_id"`
	Stage types.Stage `json:"stage"`
	Path  string      `json:"path,omitempty"`
}

// Store persists artifacts for exactly one run. Saving the same (job, stage)
// twice overwrites deterministically; re-runs never accumulate duplicates.
type Store interface {
	SaveDocument(ctx context.Context, doc *types.Document) (*DocumentRef, error)
	SaveVerdict(ctx context.Context, verdict *types.Verdict) error
	LoadDocument(ctx context.Context, jobID string, stage types.Stage) (*types.Document, error)
}

// WriteError represents a failed artifact write.
type WriteError struct {
	JobID   string
	Stage   types.Stage
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("artifact write error for %s/%s: %s: %v", e.JobID, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("artifact write error for %s/%s: %s", e.JobID, e.Stage, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
