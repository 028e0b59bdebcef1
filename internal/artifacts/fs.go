package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Subdirectories of a run owned by the filesystem store.
const (
	lettersDir  = "cover_letters"
	verdictsDir = "verdicts"

	// AuditFileName is the run's append-only audit log file.
	AuditFileName = "audit.log"
)

// FSStore persists artifacts as files under a single run directory. Documents
// are plain text for human review; verdicts are JSON alongside them.
type FSStore struct {
	runDir string
	audit  *AuditLog
}

// NewFSStore creates the store for a run directory, creating the artifact
// subdirectories if missing.
func NewFSStore(runDir string, audit *AuditLog) (*FSStore, error) {
	for _, sub := range []string{lettersDir, verdictsDir} {
		if err := os.MkdirAll(filepath.Join(runDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %s: %w", sub, err)
		}
	}
	return &FSStore{runDir: runDir, audit: audit}, nil
}

// SaveDocument writes the document under the run, named deterministically by
// (job, stage) so re-saves overwrite. The write is atomic: content lands in a
// temp file first and is renamed into place, so a cancelled run never leaves a
// partial artifact.
func (s *FSStore) SaveDocument(_ context.Context, doc *types.Document) (*DocumentRef, error) {
	path := s.documentPath(doc.JobID, doc.Stage)
	if err := writeFileAtomic(path, []byte(doc.Content)); err != nil {
		return nil, &WriteError{JobID: doc.JobID, Stage: doc.Stage, Message: "failed to write document", Cause: err}
	}

	if s.audit != nil {
		s.audit.Append(doc.JobID, string(doc.Stage), "document-saved")
	}

	return &DocumentRef{
		ID:    uuid.New(),
		JobID: doc.JobID,
		Stage: doc.Stage,
		Path:  path,
	}, nil
}

// SaveVerdict writes the structured verdict alongside its document.
func (s *FSStore) SaveVerdict(_ context.Context, verdict *types.Verdict) error {
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return &WriteError{JobID: verdict.JobID, Stage: verdict.Stage, Message: "failed to marshal verdict", Cause: err}
	}

	path := s.verdictPath(verdict.JobID, verdict.Stage)
	if err := writeFileAtomic(path, data); err != nil {
		return &WriteError{JobID: verdict.JobID, Stage: verdict.Stage, Message: "failed to write verdict", Cause: err}
	}

	if s.audit != nil {
		result := "verdict-fail"
		if verdict.Pass {
			result = "verdict-pass"
		}
		s.audit.Append(verdict.JobID, string(verdict.Stage), result)
	}

	return nil
}

// LoadDocument reads a previously saved document, or ErrNotFound.
func (s *FSStore) LoadDocument(_ context.Context, jobID string, stage types.Stage) (*types.Document, error) {
	path := s.documentPath(jobID, stage)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat document %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	doc := types.NewDocument(jobID, stage, string(content))
	doc.CreatedAt = info.ModTime().UTC()
	return doc, nil
}

// documentPath returns the deterministic location of a document file.
func (s *FSStore) documentPath(jobID string, stage types.Stage) string {
	return filepath.Join(s.runDir, lettersDir, fmt.Sprintf("%s_%s.txt", safeName(jobID), stage))
}

// verdictPath returns the deterministic location of a verdict file.
func (s *FSStore) verdictPath(jobID string, stage types.Stage) string {
	return filepath.Join(s.runDir, verdictsDir, fmt.Sprintf("%s_%s.json", safeName(jobID), stage))
}

// safeName strips characters that are unsafe in file names.
func safeName(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "job"
	}
	return sb.String()
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
