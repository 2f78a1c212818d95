package observability

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/recruit-pilot/internal/contacts"
	"github.com/jonathan/recruit-pilot/internal/db"
)

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	run := &db.Run{
		ID:      uuid.New(),
		Query:   "python developer",
		Sources: []string{"indeed", "remotive"},
		Status:  db.StatusDone,
		Stage:   db.StageDone,
		Counts:  db.Counts{"jobs": 3, "enriched": 2, "generated": 3},
	}

	p.PrintRunSummary(run)
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "python developer")
	assert.Contains(t, output, "indeed, remotive")
	assert.Contains(t, output, "done")
	assert.Contains(t, output, "jobs:")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintPostings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	postings := []db.JobPosting{
		{
			Source:         "indeed",
			Title:          "Software Engineer",
			Company:        db.StrPtr("Acme Corp"),
			Location:       db.StrPtr("Remote"),
			RecruiterName:  db.StrPtr("Jane Doe"),
			RecruiterEmail: db.StrPtr("jane@acme.com"),
		},
		{
			Source: "remotive",
			Title:  "Backend Engineer",
		},
	}

	p.PrintPostings(postings)
	output := buf.String()

	assert.Contains(t, output, "DISCOVERED POSTINGS")
	assert.Contains(t, output, "Software Engineer")
	assert.Contains(t, output, "indeed · Acme Corp · Remote")
	assert.Contains(t, output, "Jane Doe <jane@acme.com>")
	assert.Contains(t, output, "Backend Engineer")
}

func TestPrintPostings_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPostings(nil)

	assert.Empty(t, buf.String())
}

func TestPrintRankedContacts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := []contacts.RankedCandidate{
		{Candidate: contacts.Candidate{Name: "Jane Doe", Title: "Senior Technical Recruiter"}, Score: 17},
		{Candidate: contacts.Candidate{Name: "Bob Stone", Title: "Sourcer"}, Score: 11},
	}

	p.PrintRankedContacts("Software Engineer", ranked)
	output := buf.String()

	assert.Contains(t, output, "RANKED CONTACTS")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "score 17")
	assert.Contains(t, output, "Bob Stone")
}

func TestPrintRankedContacts_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRankedContacts("Software Engineer", nil)

	assert.Contains(t, buf.String(), "NO RECRUITING CONTACTS FOUND")
}

func TestPrintContact(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintContact(&contacts.Contact{
		Name:        "Jane Doe",
		Title:       "Senior Technical Recruiter",
		LinkedinURL: "https://linkedin.com/in/janedoe",
	})
	output := buf.String()

	assert.Contains(t, output, "RECRUITING CONTACT")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "(not unlocked)")
	assert.Contains(t, output, "linkedin.com/in/janedoe")
}
