package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *CandidateProfile {
	return &CandidateProfile{
		Name:        "Jane Smith",
		Skills:      []string{"Go", "PostgreSQL"},
		TargetRoles: []string{"Backend Engineer"},
	}
}

func TestProfileValidate(t *testing.T) {
	t.Run("valid profile passes", func(t *testing.T) {
		assert.NoError(t, validProfile().Validate())
	})

	t.Run("missing name fails", func(t *testing.T) {
		p := validProfile()
		p.Name = ""
		assert.Error(t, p.Validate())
	})

	t.Run("empty skills fails", func(t *testing.T) {
		p := validProfile()
		p.Skills = nil
		assert.Error(t, p.Validate())
	})

	t.Run("empty target roles fails", func(t *testing.T) {
		p := validProfile()
		p.TargetRoles = nil
		assert.Error(t, p.Validate())
	})
}

func TestProfileSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Jane Smith", "jane_smith"},
		{"mixed case", "JANE smith", "jane_smith"},
		{"special characters stripped", "Jane O'Brien-Smith!", "jane_obrien-smith"},
		{"empty name falls back", "", "candidate"},
		{"only special characters falls back", "!!!", "candidate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			p.Name = tt.input
			assert.Equal(t, tt.expected, p.Slug())
		})
	}
}

func TestLoadProfile(t *testing.T) {
	t.Run("loads valid profile file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "profile.json")
		content := `{
			"name": "Jane Smith",
			"current_role": "Software Engineer",
			"skills": ["Go", "Kubernetes"],
			"target_roles": ["Backend Engineer"]
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		profile, err := LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", profile.Name)
		assert.Equal(t, []string{"Go", "Kubernetes"}, profile.Skills)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("invalid profile errors", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "profile.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name": "Jane"}`), 0o644))

		_, err := LoadProfile(path)
		assert.Error(t, err)
	})

	t.Run("malformed JSON errors", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "profile.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		_, err := LoadProfile(path)
		assert.Error(t, err)
	})
}
