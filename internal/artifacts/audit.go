package artifacts

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuditEntry is a single line in a run's append-only audit log.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id"`
	Stage     string    `json:"stage"`
	Result    string    `json:"result"`
}

// AuditLog appends traceability entries to a run's audit file. Appends are
// fire-and-forget relative to the primary save: a failed append is surfaced as
// a warning, never as an error to the caller.
type AuditLog struct {
	path   string
	logger *zap.SugaredLogger
	mu     sync.Mutex
}

// NewAuditLog creates an audit log writing to path. logger may be nil.
func NewAuditLog(path string, logger *zap.SugaredLogger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuditLog{path: path, logger: logger}
}

// Append writes one entry as a JSON line. Failures are logged and swallowed.
func (a *AuditLog) Append(jobID, stage, result string) {
	entry := AuditEntry{
		Timestamp: time.Now().UTC(),
		JobID:     jobID,
		Stage:     stage,
		Result:    result,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		a.logger.Warnw("failed to marshal audit entry", "job_id", jobID, "error", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		a.logger.Warnw("failed to open audit log", "path", a.path, "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		a.logger.Warnw("failed to append audit entry", "path", a.path, "error", err)
	}
}
