package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertPosting inserts a posting for a run. Returns false when a posting
// with the same (run_id, content_hash) already exists; the existing row is
// left untouched.
func (db *DB) InsertPosting(ctx context.Context, p *JobPosting) (bool, error) {
	contactsJSON, err := json.Marshal(p.RecruiterContacts)
	if err != nil {
		return false, fmt.Errorf("failed to marshal recruiter contacts: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_postings
		   (run_id, source, external_id, title, company, location, url, description,
		    content_hash, recruiter_contacts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (run_id, content_hash) DO NOTHING
		 RETURNING id, created_at`,
		p.RunID, p.Source, p.ExternalID, p.Title, p.Company, p.Location, p.URL,
		p.Description, p.ContentHash, contactsJSON,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Conflict: duplicate within the run
			return false, nil
		}
		return false, fmt.Errorf("failed to insert posting: %w", err)
	}
	return true, nil
}

// ListPostingsByRun retrieves all postings for a run in insertion order
func (db *DB) ListPostingsByRun(ctx context.Context, runID uuid.UUID) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, source, external_id, title, company, location, url,
		        description, content_hash, recruiter_name, recruiter_email,
		        recruiter_contacts, cover_letter, resume_custom,
		        enriched_at, generated_at, created_at
		 FROM job_postings WHERE run_id = $1 ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, *p)
	}
	return postings, nil
}

// GetPosting retrieves a posting by ID. Returns nil without error when not found.
func (db *DB) GetPosting(ctx context.Context, postingID uuid.UUID) (*JobPosting, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, run_id, source, external_id, title, company, location, url,
		        description, content_hash, recruiter_name, recruiter_email,
		        recruiter_contacts, cover_letter, resume_custom,
		        enriched_at, generated_at, created_at
		 FROM job_postings WHERE id = $1`,
		postingID,
	)
	p, err := scanPosting(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// UpdateRecruiter records the enrichment result for a posting.
// A nil email leaves recruiter_email untouched (never written as empty).
func (db *DB) UpdateRecruiter(ctx context.Context, postingID uuid.UUID, name *string, email *string, contacts []RecruiterContact) error {
	if len(contacts) > MaxRecruiterContacts {
		contacts = contacts[:MaxRecruiterContacts]
	}
	contactsJSON, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal recruiter contacts: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE job_postings
		 SET recruiter_name = COALESCE($1, recruiter_name),
		     recruiter_email = COALESCE($2, recruiter_email),
		     recruiter_contacts = $3,
		     enriched_at = $4
		 WHERE id = $5`,
		name, email, contactsJSON, time.Now(), postingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recruiter fields: %w", err)
	}
	return nil
}

// UpdateDocuments stores the generated resume and cover letter for a posting
func (db *DB) UpdateDocuments(ctx context.Context, postingID uuid.UUID, resume, coverLetter string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE job_postings
		 SET resume_custom = $1, cover_letter = $2, generated_at = $3
		 WHERE id = $4`,
		resume, coverLetter, time.Now(), postingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}
	return nil
}

// scanPosting scans one posting row from either a Row or Rows
func scanPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	var contactsJSON []byte
	if err := row.Scan(&p.ID, &p.RunID, &p.Source, &p.ExternalID, &p.Title, &p.Company,
		&p.Location, &p.URL, &p.Description, &p.ContentHash, &p.RecruiterName,
		&p.RecruiterEmail, &contactsJSON, &p.CoverLetter, &p.ResumeCustom,
		&p.EnrichedAt, &p.GeneratedAt, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan posting: %w", err)
	}
	if len(contactsJSON) > 0 {
		_ = json.Unmarshal(contactsJSON, &p.RecruiterContacts)
	}
	return &p, nil
}
