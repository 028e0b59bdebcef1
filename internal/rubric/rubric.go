// Package rubric defines the versioned quality criteria cover letters are judged against.
package rubric

import (
	"fmt"
	"strings"
)

// Criterion is a single named pass/fail check within a rubric.
type Criterion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Rubric is an ordered, versioned set of criteria. A verdict records the
// rubric version it was evaluated against so historical runs stay reproducible
// when the rubric changes.
type Rubric struct {
	Version  string      `json:"version"`
	Criteria []Criterion `json:"criteria"`
}

// MinWords and MaxWords bound the acceptable cover letter length.
const (
	MinWords = 250
	MaxWords = 350
)

// bannedWords are words the letter must not contain. Derived from the
// candidate style guidelines; matching is case-insensitive on word boundaries.
var bannedWords = []string{
	"delve", "embark", "esteemed", "craft", "crafting", "realm", "game-changer",
	"unlock", "skyrocket", "revolutionize", "disruptive", "utilize", "utilizing",
	"tapestry", "illuminate", "unveil", "pivotal", "elucidate", "furthermore",
	"harness", "excited", "exciting", "groundbreaking", "cutting-edge",
	"testament", "moreover", "ever-evolving", "landscape", "navigating",
}

// BannedWords returns a copy of the banned-word list so prompts can state the
// same constraint the judge enforces.
func BannedWords() []string {
	words := make([]string, len(bannedWords))
	copy(words, bannedWords)
	return words
}

// Default returns rubric v1, the fixed criteria set for job application letters.
func Default() *Rubric {
	return &Rubric{
		Version: "v1",
		Criteria: []Criterion{
			{ID: "word-count", Description: "The letter is between 250 and 350 words."},
			{ID: "no-em-dash", Description: "The letter contains no em dashes and no semicolons."},
			{ID: "no-banned-phrases", Description: "The letter avoids every word on the banned-word list and does not open with 'I am excited to apply' or 'I am writing to apply'."},
			{ID: "bullet-list", Description: "The letter includes a bulleted list of 3-4 relevant achievements."},
			{ID: "opening-style", Description: "The opening sentence follows one of the approved direct opening styles and conveys the job, the candidate's background, and a confident tone. It does not start with 'Dear Hiring Manager'."},
			{ID: "structure", Description: "The letter has a specific subject line, a body that connects the candidate's experience to the company's needs, and ends with a clear call to action."},
			{ID: "tone", Description: "The tone is bold, humble, and corporate: short active-voice sentences, simple language, addresses the reader as 'you', no metaphors or cliches."},
		},
	}
}

// Criterion returns the criterion with the given ID, or nil if unknown.
func (r *Rubric) Criterion(id string) *Criterion {
	for i := range r.Criteria {
		if r.Criteria[i].ID == id {
			return &r.Criteria[i]
		}
	}
	return nil
}

// CriteriaText renders the criteria as a numbered list for judge prompts.
func (r *Rubric) CriteriaText() string {
	var sb strings.Builder
	for i, c := range r.Criteria {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, c.ID, c.Description)
	}
	return sb.String()
}
