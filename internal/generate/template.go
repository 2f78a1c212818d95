package generate

import (
	"fmt"
	"strings"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// fallbackCoverLetter renders the deterministic cover-letter template used
// when no LLM is configured or the LLM call failed. Output is stable across
// repeated calls for the same posting.
func fallbackCoverLetter(posting *db.JobPosting) string {
	company := companyName(posting)
	recruiter := recruiterName(posting)

	excerpt := ""
	if posting.Description != nil {
		excerpt = descriptionExcerpt(*posting.Description)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", recruiter)
	fmt.Fprintf(&b, "I am writing to express my interest in the %s position at %s. ", posting.Title, company)
	b.WriteString("My background aligns closely with the responsibilities of this role, and I would welcome the opportunity to contribute to your team.\n\n")

	if excerpt != "" {
		fmt.Fprintf(&b, "The posting notes: \"%s\". ", excerpt)
		b.WriteString("This matches the kind of work I have delivered throughout my career, and I am confident I can make an immediate impact.\n\n")
	}

	fmt.Fprintf(&b, "I have attached my resume for your review and would appreciate the chance to discuss how my experience fits the %s role. ", posting.Title)
	b.WriteString("Thank you for your time and consideration.\n\nBest regards")

	return b.String()
}

// descriptionExcerpt returns a short leading excerpt of the description,
// cut at a word boundary when possible.
func descriptionExcerpt(description string) string {
	text := strings.Join(strings.Fields(description), " ")
	if len(text) <= descriptionExcerptLength {
		return text
	}
	cut := text[:descriptionExcerptLength]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
