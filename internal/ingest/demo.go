package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// DemoSourceName labels the synthesized placeholder postings
const DemoSourceName = "demo"

// demoPostingCount is the fixed number of placeholder postings inserted
// when every configured source returned nothing.
const demoPostingCount = 3

var demoCompanies = []struct {
	company  string
	location string
}{
	{"Acme Corp", "Remote"},
	{"Globex", "New York, NY"},
	{"Initech", "San Francisco, CA"},
}

// DemoSource serves the placeholder postings as a regular source so a run
// can select them explicitly without relying on the empty-result fallback.
type DemoSource struct{}

// NewDemoSource creates the placeholder source
func NewDemoSource() *DemoSource {
	return &DemoSource{}
}

// Name returns the source identifier
func (s *DemoSource) Name() string {
	return DemoSourceName
}

// Fetch returns the fixed placeholder postings for the query. The location
// and page count are ignored; duplicates across locations collapse on the
// content hash.
func (s *DemoSource) Fetch(_ context.Context, query, _ string, _ int) ([]RawPosting, error) {
	postings := demoPostings(uuid.Nil, query)
	raw := make([]RawPosting, 0, len(postings))
	for _, p := range postings {
		raw = append(raw, RawPosting{
			Title:       p.Title,
			Company:     *p.Company,
			Location:    *p.Location,
			URL:         *p.URL,
			Description: *p.Description,
		})
	}
	return raw, nil
}

// demoPostings synthesizes clearly-labeled placeholder postings so the
// downstream phases and UIs have non-empty data to operate on without
// live network access.
func demoPostings(runID uuid.UUID, query string) []*db.JobPosting {
	title := query
	if title == "" {
		title = "Software Engineer"
	}

	postings := make([]*db.JobPosting, 0, demoPostingCount)
	for i := 0; i < demoPostingCount; i++ {
		entry := demoCompanies[i%len(demoCompanies)]
		url := fmt.Sprintf("https://example.com/jobs/demo-%d", i+1)
		description := fmt.Sprintf(
			"%s is hiring a %s. This is a placeholder posting generated because no live source returned results. "+
				"The role involves building and operating production systems with a small, collaborative team.",
			entry.company, title,
		)
		postings = append(postings, &db.JobPosting{
			RunID:       runID,
			Source:      DemoSourceName,
			Title:       title,
			Company:     db.StrPtr(entry.company),
			Location:    db.StrPtr(entry.location),
			URL:         db.StrPtr(url),
			Description: db.StrPtr(description),
			ContentHash: db.ContentHash(DemoSourceName, title, entry.company, entry.location),
		})
	}
	return postings
}
