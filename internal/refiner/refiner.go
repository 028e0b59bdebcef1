// Package refiner produces corrected cover letters from judge feedback.
package refiner

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Refiner rewrites a failing document so that failing criteria are fixed while
// passing aspects are preserved. It shares the Drafter's generator and error
// kinds.
type Refiner struct {
	generator llm.Generator
	tier      llm.ModelTier
}

// New creates a Refiner backed by the given generator.
func New(generator llm.Generator) *Refiner {
	return &Refiner{generator: generator, tier: llm.TierAdvanced}
}

// Refine generates a corrected document for the given attempt (1-based). The
// verdict must be the one produced for doc.
func (r *Refiner) Refine(ctx context.Context, doc *types.Document, job *types.JobPosting, verdict *types.Verdict, attempt int) (*types.Document, error) {
	prompt := BuildPrompt(doc, job, verdict)

	content, err := r.generator.GenerateContent(ctx, prompt, r.tier)
	if err != nil {
		return nil, err
	}

	return types.NewDocument(doc.JobID, types.RefineStage(attempt), strings.TrimSpace(content)), nil
}

// BuildPrompt renders the refine prompt from the previous document, the job,
// and the judge's itemized feedback.
func BuildPrompt(doc *types.Document, job *types.JobPosting, verdict *types.Verdict) string {
	var failing []string
	for _, c := range verdict.FailingCriteria() {
		line := fmt.Sprintf("- %s", c.CriterionID)
		if c.Note != "" {
			line += ": " + c.Note
		}
		failing = append(failing, line)
	}
	if len(failing) == 0 {
		failing = append(failing, "- (none itemized)")
	}

	template := prompts.MustGet("letters.json", "refine-cover-letter")
	return prompts.Format(template, map[string]string{
		"JobTitle":        job.Title,
		"JobCompany":      job.Company,
		"Content":         doc.Content,
		"Feedback":        verdict.Feedback,
		"FailingCriteria": strings.Join(failing, "\n"),
	})
}
