package generate

import (
	"fmt"
	"html"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// DocumentWriter serializes generated documents to disk: plain text always,
// plus a best-effort HTML rendering for download. Rendering failures are
// logged and never propagate to the generation phase.
type DocumentWriter struct {
	outDir string
}

// NewDocumentWriter creates a writer rooted at outDir
func NewDocumentWriter(outDir string) *DocumentWriter {
	return &DocumentWriter{outDir: outDir}
}

// Write stores the documents for one posting. Best-effort throughout.
func (w *DocumentWriter) Write(posting *db.JobPosting, resume, coverLetter string) {
	dir := filepath.Join(w.outDir, posting.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("generate: failed to create output dir %s: %v", dir, err)
		return
	}

	w.writeText(filepath.Join(dir, "resume.txt"), resume)
	w.writeText(filepath.Join(dir, "cover_letter.txt"), coverLetter)

	// Richer downloadable rendering; failure here is non-fatal
	w.writeHTML(filepath.Join(dir, "resume.html"), documentTitle(posting, "Resume"), resume)
	w.writeHTML(filepath.Join(dir, "cover_letter.html"), documentTitle(posting, "Cover Letter"), coverLetter)
}

func (w *DocumentWriter) writeText(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Printf("generate: failed to write %s: %v", path, err)
	}
}

func (w *DocumentWriter) writeHTML(path, title, content string) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(title))
	b.WriteString("<style>body{font-family:Georgia,serif;max-width:48rem;margin:2rem auto;line-height:1.5;white-space:pre-wrap;}</style>")
	b.WriteString("</head><body>")
	b.WriteString(html.EscapeString(content))
	b.WriteString("</body></html>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		log.Printf("generate: failed to render %s: %v", path, err)
	}
}

func documentTitle(posting *db.JobPosting, kind string) string {
	return fmt.Sprintf("%s - %s at %s", kind, posting.Title, companyName(posting))
}
