// Package types provides type definitions for structured data used throughout the outreach-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CandidateProfile represents the candidate a run is generated for.
// It is loaded once per run and never mutated afterwards.
type CandidateProfile struct {
	Name            string   `json:"name" validate:"required,min=1"`
	CurrentRole     string   `json:"current_role,omitempty"`
	CurrentCompany  string   `json:"current_company,omitempty"`
	ExperienceYears string   `json:"experience_years,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Education       []string `json:"education,omitempty"`
	Skills          []string `json:"skills" validate:"required,min=1"`
	Achievements    []string `json:"achievements,omitempty"`
	TargetRoles     []string `json:"target_roles" validate:"required,min=1"`
	Locations       []string `json:"locations,omitempty"`
	SearchQueries   []string `json:"search_queries,omitempty"`
}

// Validate validates the CandidateProfile using the validator.
func (p *CandidateProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// LoadProfile loads and validates a candidate profile from a JSON file.
func LoadProfile(path string) (*CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var profile CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return &profile, nil
}

// slugPattern matches characters that are not safe in a run directory name.
var slugPattern = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slug returns a filesystem-safe identifier derived from the profile name,
// used to key run namespaces (e.g. "Jane Doe" -> "jane_doe").
func (p *CandidateProfile) Slug() string {
	slug := strings.ToLower(strings.TrimSpace(p.Name))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = slugPattern.ReplaceAllString(slug, "")
	if slug == "" {
		slug = "candidate"
	}
	return slug
}
