package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobPostingDedupeKey(t *testing.T) {
	t.Run("uses job ID when present", func(t *testing.T) {
		job := &JobPosting{ID: "abc-123", Title: "Engineer", Company: "Acme"}
		assert.Equal(t, "abc-123", job.DedupeKey())
	})

	t.Run("derives stable key from title company location", func(t *testing.T) {
		a := &JobPosting{Title: "Engineer", Company: "Acme", Location: "Remote"}
		b := &JobPosting{Title: "Engineer", Company: "Acme", Location: "Remote"}
		assert.Equal(t, a.DedupeKey(), b.DedupeKey())
		assert.Len(t, a.DedupeKey(), 16)
	})

	t.Run("different postings get different keys", func(t *testing.T) {
		a := &JobPosting{Title: "Engineer", Company: "Acme", Location: "Remote"}
		b := &JobPosting{Title: "Engineer", Company: "Globex", Location: "Remote"}
		assert.NotEqual(t, a.DedupeKey(), b.DedupeKey())
	})
}

func TestJobPostingUsable(t *testing.T) {
	tests := []struct {
		name     string
		job      JobPosting
		expected bool
	}{
		{"complete posting", JobPosting{Company: "Acme", Description: "Build things"}, true},
		{"missing description", JobPosting{Company: "Acme"}, false},
		{"missing company", JobPosting{Description: "Build things"}, false},
		{"empty posting", JobPosting{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.job.Usable())
		})
	}
}
