// Package pipeline provides the high-level orchestration for one
// discover -> enrich -> generate -> email run.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/recruit-pilot/internal/contacts"
	"github.com/jonathan/recruit-pilot/internal/db"
	"github.com/jonathan/recruit-pilot/internal/runstate"
)

// Store is the persistence surface the orchestrator needs. Implemented by
// *db.DB; tests supply an in-memory fake.
type Store interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	UpdateRunState(ctx context.Context, run *db.Run) error
	ListPostingsByRun(ctx context.Context, runID uuid.UUID) ([]db.JobPosting, error)
	UpdateRecruiter(ctx context.Context, postingID uuid.UUID, name *string, email *string, contactList []db.RecruiterContact) error
	UpdateDocuments(ctx context.Context, postingID uuid.UUID, resume, coverLetter string) error
}

// Ingestor discovers and persists postings for a run
type Ingestor interface {
	Ingest(ctx context.Context, runID uuid.UUID, query string, locations, sources []string) (int, error)
}

// ContactFinder locates a recruiting contact for a company/title pair
type ContactFinder interface {
	FindContact(ctx context.Context, company, jobTitle string) (*contacts.Contact, error)
}

// Generator produces the tailored documents for a posting
type Generator interface {
	Generate(ctx context.Context, baseResume string, posting *db.JobPosting) (string, string)
}

// Orchestrator drives one run end-to-end with continue-on-error semantics
// per posting. Multiple runs may execute concurrently; the only shared
// state is the contact client's lookup cache.
type Orchestrator struct {
	store      Store
	ingestor   Ingestor
	finder     ContactFinder
	generator  Generator
	baseResume string
	verbose    bool
}

// New creates an orchestrator
func New(store Store, ingestor Ingestor, finder ContactFinder, generator Generator, baseResume string, verbose bool) *Orchestrator {
	return &Orchestrator{
		store:      store,
		ingestor:   ingestor,
		finder:     finder,
		generator:  generator,
		baseResume: baseResume,
		verbose:    verbose,
	}
}

// Execute runs the pipeline for a queued run. A run always reaches a
// terminal state: anything unexpected escaping the phase logic is caught
// here and recorded via MarkError rather than leaving the run hanging.
func (o *Orchestrator) Execute(ctx context.Context, runID uuid.UUID) error {
	run, err := o.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	tracker := runstate.NewTracker(o.store, run)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: run %s panicked: %v", runID, r)
			_ = tracker.MarkError(ctx, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := o.execute(ctx, tracker); err != nil {
		log.Printf("pipeline: run %s failed: %v", runID, err)
		_ = tracker.MarkError(ctx, err.Error())
		return err
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, tracker *runstate.Tracker) error {
	run := tracker.Run()

	if err := tracker.MarkRunning(ctx); err != nil {
		return err
	}
	if err := tracker.SetStage(ctx, db.StageDiscover); err != nil {
		return err
	}

	fmt.Printf("[Run %s] Discovering postings for %q (sources: %v)...\n", shortID(run.ID), run.Query, run.Sources)
	total, err := o.ingestor.Ingest(ctx, run.ID, run.Query, run.Locations, run.Sources)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if err := tracker.SetStage(ctx, db.StageParse); err != nil {
		return err
	}
	if err := tracker.MergeCounts(ctx, db.Counts{"jobs": total}); err != nil {
		return err
	}
	fmt.Printf("[Run %s] Discovered %d postings.\n", shortID(run.ID), total)

	postings, err := o.store.ListPostingsByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list postings: %w", err)
	}

	if err := o.enrich(ctx, tracker, postings); err != nil {
		return err
	}
	if err := o.generate(ctx, tracker, postings); err != nil {
		return err
	}

	// Email sending is triggered separately by an operator; the run only
	// marks the stage so a poller sees the phase advance.
	if err := tracker.SetStage(ctx, db.StageEmail); err != nil {
		return err
	}

	fmt.Printf("[Run %s] Done.\n", shortID(run.ID))
	return tracker.MarkDone(ctx)
}

// enrich finds a recruiting contact per posting. Per-posting failures are
// logged and skipped; the loop never aborts the run.
func (o *Orchestrator) enrich(ctx context.Context, tracker *runstate.Tracker, postings []db.JobPosting) error {
	run := tracker.Run()
	if err := tracker.SetStage(ctx, db.StageEnrich); err != nil {
		return err
	}
	fmt.Printf("[Run %s] Enriching %d postings with recruiter contacts...\n", shortID(run.ID), len(postings))

	attempted := 0
	for i := range postings {
		posting := &postings[i]
		if posting.RecruiterEmail != nil {
			continue
		}
		attempted++

		company := ""
		if posting.Company != nil {
			company = *posting.Company
		}

		contact, err := o.finder.FindContact(ctx, company, posting.Title)
		if err != nil {
			log.Printf("pipeline: contact lookup failed for posting %s: %v", posting.ID, err)
			continue
		}
		if contact == nil {
			continue
		}

		// The name is always recorded; the email only when the unlock
		// actually produced one.
		name := db.StrPtr(contact.Name)
		email := db.StrPtr(contact.Email)
		contactList := []db.RecruiterContact{{
			Name:        contact.Name,
			Title:       contact.Title,
			Email:       contact.Email,
			LinkedinURL: contact.LinkedinURL,
		}}
		if err := o.store.UpdateRecruiter(ctx, posting.ID, name, email, contactList); err != nil {
			log.Printf("pipeline: failed to save recruiter for posting %s: %v", posting.ID, err)
			continue
		}
		posting.RecruiterName = name
		if email != nil {
			posting.RecruiterEmail = email
		}
		if o.verbose {
			fmt.Printf("[Run %s]   %s -> %s (%s)\n", shortID(run.ID), posting.Title, contact.Name, contact.Title)
		}
	}

	return tracker.MergeCounts(ctx, db.Counts{"enriched": attempted})
}

// generate produces documents per posting, publishing incremental progress
// after each so a polling caller observes the phase advance.
func (o *Orchestrator) generate(ctx context.Context, tracker *runstate.Tracker, postings []db.JobPosting) error {
	run := tracker.Run()
	if err := tracker.SetStage(ctx, db.StageGenerate); err != nil {
		return err
	}
	fmt.Printf("[Run %s] Generating documents for %d postings...\n", shortID(run.ID), len(postings))

	generated := 0
	for i := range postings {
		posting := &postings[i]

		resume, coverLetter := o.generator.Generate(ctx, o.baseResume, posting)
		if err := o.store.UpdateDocuments(ctx, posting.ID, resume, coverLetter); err != nil {
			log.Printf("pipeline: failed to save documents for posting %s: %v", posting.ID, err)
		} else {
			generated++
		}

		if err := tracker.MergeCounts(ctx, db.Counts{
			"generated": generated,
			"generation_progress": map[string]int{
				"processed": i + 1,
				"total":     len(postings),
			},
		}); err != nil {
			return err
		}
	}

	return nil
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
