// Package ingest discovers job postings from best-effort scraping sources,
// normalizes them, and writes a deduplicated set per run.
package ingest

import "context"

// RawPosting is an unnormalized record returned by a source
type RawPosting struct {
	ExternalID  string
	Title       string
	Company     string
	Location    string
	URL         string
	Description string
}

// Source fetches postings for a query/location pair. Sources are
// best-effort: scraping breaks when boards change markup, so a failed
// fetch degrades to zero postings from that source, never a run abort.
type Source interface {
	// Name identifies the ingestion channel, recorded on each posting
	Name() string
	// Fetch retrieves up to pageCount pages of postings. Location may be
	// empty, meaning no location filter.
	Fetch(ctx context.Context, query, location string, pageCount int) ([]RawPosting, error)
}
