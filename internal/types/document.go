package types

import (
	"fmt"
	"strings"
	"time"
)

// Stage identifies which pipeline stage produced a document or verdict.
type Stage string

// StageDraft is the initial document produced by the drafter.
const StageDraft Stage = "draft"

// RefineStage returns the stage tag for the nth refinement attempt (1-based).
func RefineStage(attempt int) Stage {
	return Stage(fmt.Sprintf("refine-%d", attempt))
}

// Document is the text artifact produced at any pipeline stage. A document is
// owned exclusively by the run that produced it.
type Document struct {
	JobID     string    `json:"job_id"`
	Stage     Stage     `json:"stage"`
	Content   string    `json:"content"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocument builds a Document for a job and stage, computing the word count.
func NewDocument(jobID string, stage Stage, content string) *Document {
	return &Document{
		JobID:     jobID,
		Stage:     stage,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CreatedAt: time.Now().UTC(),
	}
}

// CriterionResult is the judge's pass/fail result for a single rubric criterion.
type CriterionResult struct {
	CriterionID string `json:"criterion_id"`
	Pass        bool   `json:"pass"`
	Note        string `json:"note,omitempty"`
}

// Verdict is the judge's structured output for one document. It is immutable
// once produced and associated one-to-one with the document it evaluated.
type Verdict struct {
	Pass          bool              `json:"pass"`
	Criteria      []CriterionResult `json:"criteria"`
	Feedback      string            `json:"feedback"`
	RubricVersion string            `json:"rubric_version"`
	JobID         string            `json:"job_id"`
	Stage         Stage             `json:"stage"`
	EvaluatedAt   time.Time         `json:"evaluated_at"`
}

// FailingCriteria returns the subset of criterion results that failed.
func (v *Verdict) FailingCriteria() []CriterionResult {
	var failing []CriterionResult
	for _, c := range v.Criteria {
		if !c.Pass {
			failing = append(failing, c)
		}
	}
	return failing
}
