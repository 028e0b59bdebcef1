package types

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// JobPosting represents a single discovered job row, produced by the upstream
// search collaborator and consumed read-only by the pipeline.
type JobPosting struct {
	ID          string `json:"job_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
	Salary      string `json:"salary,omitempty"`
	Link        string `json:"link,omitempty"`
	Source      string `json:"source,omitempty"`
	PostedDate  string `json:"posted_date,omitempty"`
	Query       string `json:"query,omitempty"`
	Region      string `json:"region,omitempty"`
	SearchDate  string `json:"search_date,omitempty"`
}

// DedupeKey returns the content-derived identifier used to skip duplicate
// postings within a batch. The upstream job_id is used when present; otherwise
// the key is derived from title, company, and location.
func (j *JobPosting) DedupeKey() string {
	if j.ID != "" {
		return j.ID
	}
	h := sha1.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(j.Title))))
	h.Write([]byte("|"))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(j.Company))))
	h.Write([]byte("|"))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(j.Location))))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Usable reports whether the posting carries enough content to draft against.
// Unusable postings are rejected before any generative call is made.
func (j *JobPosting) Usable() bool {
	return strings.TrimSpace(j.Description) != "" && strings.TrimSpace(j.Company) != ""
}
