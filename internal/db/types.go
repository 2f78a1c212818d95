package db

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus constants for the coarse run lifecycle
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// RunStage constants for the pipeline phase a run is currently in
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StageEnrich   = "enrich"
	StageGenerate = "generate"
	StageEmail    = "email"
	StageDone     = "done"
	StageError    = "error"
)

// Counts holds per-run progress metrics, persisted as JSONB.
// Values are ints or nested objects (generation_progress).
type Counts map[string]any

// Merge shallow-merges partial into c: new keys are added, existing keys
// are overwritten (not summed).
func (c Counts) Merge(partial Counts) {
	for k, v := range partial {
		c[k] = v
	}
}

// Run represents one end-to-end pipeline execution
type Run struct {
	ID         uuid.UUID  `json:"id"`
	Query      string     `json:"query"`
	Locations  []string   `json:"locations"`
	Sources    []string   `json:"sources"`
	Status     string     `json:"status"`
	Stage      string     `json:"stage"`
	Counts     Counts     `json:"counts"`
	Error      *string    `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Terminal reports whether the run has reached a final status
func (r *Run) Terminal() bool {
	return r.Status == StatusDone || r.Status == StatusError
}

// MaxRecruiterContacts caps the stored recruiter contact list per posting
const MaxRecruiterContacts = 5

// RecruiterContact is one enriched contact attached to a posting
type RecruiterContact struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Email       string `json:"email,omitempty"`
	LinkedinURL string `json:"linkedin_url,omitempty"`
}

// JobPosting represents one normalized job listing discovered during a run
type JobPosting struct {
	ID                uuid.UUID          `json:"id"`
	RunID             uuid.UUID          `json:"run_id"`
	Source            string             `json:"source"`
	ExternalID        *string            `json:"external_id,omitempty"`
	Title             string             `json:"title"`
	Company           *string            `json:"company,omitempty"`
	Location          *string            `json:"location,omitempty"`
	URL               *string            `json:"url,omitempty"`
	Description       *string            `json:"description,omitempty"`
	ContentHash       string             `json:"content_hash"`
	RecruiterName     *string            `json:"recruiter_name,omitempty"`
	RecruiterEmail    *string            `json:"recruiter_email,omitempty"`
	RecruiterContacts []RecruiterContact `json:"recruiter_contacts,omitempty"`
	CoverLetter       *string            `json:"cover_letter,omitempty"`
	ResumeCustom      *string            `json:"resume_custom,omitempty"`
	EnrichedAt        *time.Time         `json:"enriched_at,omitempty"`
	GeneratedAt       *time.Time         `json:"generated_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ContentHash computes the deduplication key for a posting.
// The hash is deterministic across calls for the same inputs; (run_id,
// content_hash) is unique, so re-ingesting an identical posting within
// one run is a no-op.
func ContentHash(source, title, company, location string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{source, title, company, location}, "|")))
	return hex.EncodeToString(h[:])
}

// StrPtr returns a pointer to s, or nil when s is empty.
// Optional posting fields are stored as NULL rather than empty strings.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
