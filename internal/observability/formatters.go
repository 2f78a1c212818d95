// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/recruit-pilot/internal/contacts"
	"github.com/jonathan/recruit-pilot/internal/db"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs a human-readable summary of a run's state.
func (p *Printer) PrintRunSummary(run *db.Run) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Query:    %s\n", run.Query))
	if len(run.Locations) > 0 {
		sb.WriteString(fmt.Sprintf("Where:    %s\n", strings.Join(run.Locations, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Sources:  %s\n", strings.Join(run.Sources, ", ")))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status:   %s (%s)\n", run.Status, run.Stage))

	if len(run.Counts) > 0 {
		sb.WriteString("Counts:\n")
		for _, key := range []string{"jobs", "enriched", "generated"} {
			if value, ok := run.Counts[key]; ok {
				sb.WriteString(fmt.Sprintf("  %-10s %v\n", key+":", value))
			}
		}
	}
	if run.Error != nil {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", *run.Error))
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPostings outputs the discovered postings with their enrichment state.
func (p *Printer) PrintPostings(postings []db.JobPosting) {
	if len(postings) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Discovered %d postings:\n\n", len(postings)))

	count := min(len(postings), maxItemsToShow)
	for i := 0; i < count; i++ {
		posting := postings[i]
		title := posting.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))

		details := []string{posting.Source}
		if posting.Company != nil {
			details = append(details, *posting.Company)
		}
		if posting.Location != nil {
			details = append(details, *posting.Location)
		}
		sb.WriteString(fmt.Sprintf("    %s\n", strings.Join(details, " · ")))

		if posting.RecruiterName != nil {
			contact := *posting.RecruiterName
			if posting.RecruiterEmail != nil {
				contact += " <" + *posting.RecruiterEmail + ">"
			}
			if len(contact) > 48 {
				contact = contact[:45] + "..."
			}
			sb.WriteString(fmt.Sprintf("    → %s\n", contact))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(postings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more postings", len(postings)-maxItemsToShow))
	}

	p.printBox("DISCOVERED POSTINGS", sb.String())
}

// PrintRankedContacts outputs ranked contact candidates with scores.
func (p *Printer) PrintRankedContacts(jobTitle string, ranked []contacts.RankedCandidate) {
	if len(ranked) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO RECRUITING CONTACTS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ranked for %q:\n\n", jobTitle))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		candidate := ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, candidate.Name))
		title := candidate.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s (score %d)\n", title, candidate.Score))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(ranked)-maxItemsToShow))
	}

	p.printBox("RANKED CONTACTS", sb.String())
}

// PrintContact outputs a single resolved contact.
func (p *Printer) PrintContact(contact *contacts.Contact) {
	if contact == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", contact.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", contact.Title))
	if contact.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", contact.Email))
	} else {
		sb.WriteString("Email:    (not unlocked)\n")
	}
	if contact.LinkedinURL != "" {
		sb.WriteString(fmt.Sprintf("LinkedIn: %s\n", contact.LinkedinURL))
	}

	p.printBox("RECRUITING CONTACT", strings.TrimSuffix(sb.String(), "\n"))
}
