// Package drafter produces the initial cover letter for a job posting.
package drafter

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/rubric"
	"github.com/jonathan/outreach-agent/internal/types"
)

// maxDescriptionChars caps how much of the posting text goes into the prompt.
const maxDescriptionChars = 1000

// Drafter turns a (profile, job) pair into a first-draft cover letter via a
// single generative call. Length and tone constraints are stated in the prompt
// but enforced only by the judge.
type Drafter struct {
	generator llm.Generator
	tier      llm.ModelTier
}

// New creates a Drafter backed by the given generator.
func New(generator llm.Generator) *Drafter {
	return &Drafter{generator: generator, tier: llm.TierStandard}
}

// Draft generates the initial document for a job. It returns the generator's
// error kinds unchanged (GenerationError, EmptyResponseError) so the
// orchestrator can apply its retry policy.
func (d *Drafter) Draft(ctx context.Context, profile *types.CandidateProfile, job *types.JobPosting) (*types.Document, error) {
	prompt := BuildPrompt(profile, job)

	content, err := d.generator.GenerateContent(ctx, prompt, d.tier)
	if err != nil {
		return nil, err
	}

	return types.NewDocument(job.DedupeKey(), types.StageDraft, strings.TrimSpace(content)), nil
}

// BuildPrompt renders the draft prompt template for a profile and job.
func BuildPrompt(profile *types.CandidateProfile, job *types.JobPosting) string {
	description := truncate(job.Description, maxDescriptionChars)

	template := prompts.MustGet("letters.json", "draft-cover-letter")
	return prompts.Format(template, map[string]string{
		"Name":            profile.Name,
		"CurrentRole":     orDefault(profile.CurrentRole, "Professional"),
		"CurrentCompany":  orDefault(profile.CurrentCompany, "my current company"),
		"ExperienceYears": orDefault(profile.ExperienceYears, "several"),
		"Education":       bulleted(profile.Education),
		"Skills":          bulleted(profile.Skills),
		"Achievements":    bulleted(profile.Achievements),
		"TargetRoles":     strings.Join(profile.TargetRoles, ", "),
		"Locations":       strings.Join(profile.Locations, ", "),
		"JobTitle":        orDefault(job.Title, "N/A"),
		"JobCompany":      orDefault(job.Company, "N/A"),
		"JobLocation":     orDefault(job.Location, "N/A"),
		"JobDescription":  description,
		"BannedWords":     strings.Join(rubric.BannedWords(), ", "),
	})
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// bulleted formats a list with leading dashes for prompt readability.
func bulleted(items []string) string {
	if len(items) == 0 {
		return "- (none provided)"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
