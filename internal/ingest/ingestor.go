package ingest

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// defaultPageCount is how many result pages to request per (source, location)
const defaultPageCount = 2

// fetchConcurrency bounds the parallel (source, location) fetches
const fetchConcurrency = 4

// Store persists postings. Implemented by *db.DB.
type Store interface {
	InsertPosting(ctx context.Context, p *db.JobPosting) (bool, error)
}

// Ingestor produces a deduplicated set of postings for a run
type Ingestor struct {
	store        Store
	sources      map[string]Source
	demoFallback bool
	pageCount    int
}

// NewIngestor wires the available sources. When demoFallback is true and
// every source comes up empty, a small set of placeholder postings is
// inserted so the rest of the pipeline has data to operate on.
func NewIngestor(store Store, sources []Source, demoFallback bool) *Ingestor {
	byName := make(map[string]Source, len(sources))
	for _, src := range sources {
		byName[src.Name()] = src
	}
	return &Ingestor{
		store:        store,
		sources:      byName,
		demoFallback: demoFallback,
		pageCount:    defaultPageCount,
	}
}

// Ingest fetches postings from the requested sources for each location,
// normalizes and deduplicates them, and returns the number inserted.
// Fetch failures are per-(source, location): they degrade to zero postings
// from that pair and never abort the run.
func (ing *Ingestor) Ingest(ctx context.Context, runID uuid.UUID, query string, locations, sourceNames []string) (int, error) {
	// An empty location list means a single unfiltered pass
	if len(locations) == 0 {
		locations = []string{""}
	}

	type fetchResult struct {
		source   string
		postings []RawPosting
	}

	// Fetch every (source, location) pair concurrently; results keyed by
	// pair index so insertion order stays deterministic.
	results := make([]fetchResult, 0, len(sourceNames)*len(locations))
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	idx := 0
	resultSlots := make([]fetchResult, len(sourceNames)*len(locations))
	for _, name := range sourceNames {
		src, ok := ing.sources[name]
		if !ok {
			log.Printf("ingest: unknown source %q requested, skipping", name)
			idx += len(locations)
			continue
		}
		for _, location := range locations {
			slot := idx
			idx++
			source, loc := src, location
			g.Go(func() error {
				postings, err := source.Fetch(gCtx, query, loc, ing.pageCount)
				if err != nil {
					log.Printf("ingest: %s fetch failed for query=%q location=%q: %v", source.Name(), query, loc, err)
					return nil
				}
				mu.Lock()
				resultSlots[slot] = fetchResult{source: source.Name(), postings: postings}
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait() // goroutines swallow their own errors

	for _, r := range resultSlots {
		if r.source != "" {
			results = append(results, r)
		}
	}

	inserted := 0
	for _, r := range results {
		for i := range r.postings {
			posting := normalize(runID, r.source, &r.postings[i])
			if posting == nil {
				continue
			}
			ok, err := ing.store.InsertPosting(ctx, posting)
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted++
			}
		}
	}

	if inserted == 0 && ing.demoFallback {
		for _, posting := range demoPostings(runID, query) {
			ok, err := ing.store.InsertPosting(ctx, posting)
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted++
			}
		}
	}

	return inserted, nil
}

// normalize converts a raw record into a posting row. Records without a
// title are dropped; all other absent fields become NULL.
func normalize(runID uuid.UUID, source string, raw *RawPosting) *db.JobPosting {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil
	}

	company := strings.TrimSpace(raw.Company)
	location := strings.TrimSpace(raw.Location)

	return &db.JobPosting{
		RunID:       runID,
		Source:      source,
		ExternalID:  db.StrPtr(strings.TrimSpace(raw.ExternalID)),
		Title:       title,
		Company:     db.StrPtr(company),
		Location:    db.StrPtr(location),
		URL:         db.StrPtr(strings.TrimSpace(raw.URL)),
		Description: db.StrPtr(strings.TrimSpace(raw.Description)),
		ContentHash: db.ContentHash(source, title, company, location),
	}
}
