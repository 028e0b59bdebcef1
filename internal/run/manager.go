// Package run manages run directories: creation, outcome tracking, and
// finalization. Every pipeline invocation gets its own timestamped namespace
// so artifacts from different runs never collide.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/outreach-agent/internal/artifacts"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	logsDir          = "logs"
	metadataFileName = "run_metadata.json"

	// timestampLayout names runs down to the second.
	timestampLayout = "20060102_150405"
)

// Manager creates and lists runs under a base directory.
type Manager struct {
	baseDir string
	now     func() time.Time
}

// NewManager returns a manager rooted at baseDir, typically "runs".
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir, now: time.Now}
}

// Metadata is the persisted state of a run, written to run_metadata.json.
type Metadata struct {
	Name        string                       `json:"run_name"`
	ProfileSlug string                       `json:"profile_slug"`
	StartedAt   time.Time                    `json:"started_at"`
	CompletedAt *time.Time                   `json:"completed_at,omitempty"`
	Stats       types.RunStats               `json:"stats"`
	Outcomes    map[string]*types.JobOutcome `json:"outcomes"`
}

// Run is a handle to one open run. All outcome recording goes through it.
type Run struct {
	dir   string
	meta  Metadata
	store artifacts.Store
	audit *artifacts.AuditLog
	log   *zap.SugaredLogger

	mu            sync.Mutex
	finalized     bool
	dirtyAfterFin bool
	now           func() time.Time
}

// Open creates a new run directory named <profile-slug>_<timestamp> with the
// artifact subdirectories, a per-run log file, and the audit log. A name
// collision fails the whole run rather than risk mixing artifacts.
func (m *Manager) Open(profile *types.CandidateProfile) (*Run, error) {
	slug := profile.Slug()
	name := fmt.Sprintf("%s_%s", slug, m.now().UTC().Format(timestampLayout))
	dir := filepath.Join(m.baseDir, name)

	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return nil, &RunCreationError{Dir: dir, Message: "failed to create runs directory", Cause: err}
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return nil, &RunCreationError{Dir: dir, Message: "run directory already exists"}
		}
		return nil, &RunCreationError{Dir: dir, Message: "failed to create run directory", Cause: err}
	}

	logger, err := newRunLogger(filepath.Join(dir, logsDir))
	if err != nil {
		return nil, &RunCreationError{Dir: dir, Message: "failed to create run logger", Cause: err}
	}

	audit := artifacts.NewAuditLog(filepath.Join(dir, artifacts.AuditFileName), logger)
	store, err := artifacts.NewFSStore(dir, audit)
	if err != nil {
		return nil, &RunCreationError{Dir: dir, Message: "failed to create artifact store", Cause: err}
	}

	r := &Run{
		dir: dir,
		meta: Metadata{
			Name:        name,
			ProfileSlug: slug,
			StartedAt:   m.now().UTC(),
			Outcomes:    make(map[string]*types.JobOutcome),
		},
		store: store,
		audit: audit,
		log:   logger,
		now:   m.now,
	}

	if err := r.writeMetadata(); err != nil {
		return nil, &RunCreationError{Dir: dir, Message: "failed to write run metadata", Cause: err}
	}

	logger.Infow("run opened", "run", name)
	return r, nil
}

// Dir returns the run directory on disk.
func (r *Run) Dir() string {
	return r.dir
}

// Name returns the run's directory name.
func (r *Run) Name() string {
	return r.meta.Name
}

// Store returns the run's artifact store.
func (r *Run) Store() artifacts.Store {
	return r.store
}

// Logger returns the run-scoped logger backed by logs/run.log.
func (r *Run) Logger() *zap.SugaredLogger {
	return r.log
}

// UseStore swaps the artifact backend, keeping the run's audit log.
func (r *Run) UseStore(store artifacts.Store) {
	r.store = store
}

// AuditLog returns the run's append-only audit log.
func (r *Run) AuditLog() *artifacts.AuditLog {
	return r.audit
}

// RecordOutcome records the terminal result for one job. Each job gets
// exactly one outcome; a second attempt returns DuplicateOutcomeError.
func (r *Run) RecordOutcome(jobID string, outcome types.Outcome, reason types.FailReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meta.Outcomes[jobID]; exists {
		return &DuplicateOutcomeError{JobID: jobID}
	}

	r.meta.Outcomes[jobID] = &types.JobOutcome{
		JobID:      jobID,
		Outcome:    outcome,
		Reason:     reason,
		RecordedAt: r.now().UTC(),
	}

	r.meta.Stats.Attempted++
	switch outcome {
	case types.OutcomePassedFirstTry:
		r.meta.Stats.PassedFirstTry++
	case types.OutcomePassedAfterRefine:
		r.meta.Stats.PassedAfterRefine++
	case types.OutcomeFailed:
		r.meta.Stats.Failed++
	}

	if r.finalized {
		r.dirtyAfterFin = true
	}

	r.log.Infow("outcome recorded", "job", jobID, "outcome", outcome, "reason", reason)
	return nil
}

// Stats returns a snapshot of the aggregate counters.
func (r *Run) Stats() types.RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta.Stats
}

// Finalize writes the completed metadata and closes the run. Calling it a
// second time is a no-op unless outcomes were recorded in between, which
// returns InconsistentStateError because the persisted summary no longer
// matches reality.
func (r *Run) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		if r.dirtyAfterFin {
			return &InconsistentStateError{Message: "outcomes recorded after finalize"}
		}
		return nil
	}

	completed := r.now().UTC()
	r.meta.CompletedAt = &completed
	if err := r.writeMetadata(); err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}

	r.finalized = true
	r.log.Infow("run finalized",
		"attempted", r.meta.Stats.Attempted,
		"passed_first_try", r.meta.Stats.PassedFirstTry,
		"passed_after_refine", r.meta.Stats.PassedAfterRefine,
		"failed", r.meta.Stats.Failed,
	)
	_ = r.log.Sync()
	return nil
}

func (r *Run) writeMetadata() error {
	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, metadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}
	return nil
}

// newRunLogger builds a JSON file logger scoped to one run.
func newRunLogger(dir string) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "run.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Info summarizes one run for listing.
type Info struct {
	Name        string
	ProfileSlug string
	StartedAt   time.Time
	CompletedAt *time.Time
	Stats       types.RunStats
}

// List returns the runs under the base directory, newest first. Directories
// without readable metadata are skipped.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.baseDir, entry.Name(), metadataFileName))
		if err != nil {
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:        meta.Name,
			ProfileSlug: meta.ProfileSlug,
			StartedAt:   meta.StartedAt,
			CompletedAt: meta.CompletedAt,
			Stats:       meta.Stats,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.After(infos[j].StartedAt)
	})
	return infos, nil
}
