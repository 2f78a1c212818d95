// Package generate produces a tailored resume and cover letter per posting,
// preferring LLM-backed rewriting with deterministic template fallback.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/recruit-pilot/internal/db"
	"github.com/jonathan/recruit-pilot/internal/llm"
)

// MaxDocumentLength bounds persisted resume and cover-letter text
const MaxDocumentLength = 20000

// llmCallTimeout bounds each individual LLM call so a hung call degrades
// that call, not the whole generation phase.
const llmCallTimeout = 8 * time.Second

// descriptionExcerptLength is how much of the job description the
// deterministic cover-letter template quotes.
const descriptionExcerptLength = 200

// MatchAnalysis is the structured comparison between a resume and a posting
type MatchAnalysis struct {
	MatchingSkills    []string `json:"matching_skills"`
	MissingSkills     []string `json:"missing_skills"`
	ExperienceSummary string   `json:"experience_summary"`
	Keywords          []string `json:"keywords"`
}

// Generator produces per-posting documents. A nil LLM client means every
// output comes from the deterministic fallbacks.
type Generator struct {
	llm     llm.Client
	writer  *DocumentWriter
	timeout time.Duration
}

// New creates a generator. client may be nil (no LLM credential configured);
// writer may be nil to skip writing document files.
func New(client llm.Client, writer *DocumentWriter) *Generator {
	return &Generator{
		llm:     client,
		writer:  writer,
		timeout: llmCallTimeout,
	}
}

// SetTimeout overrides the per-call LLM timeout (tests)
func (g *Generator) SetTimeout(d time.Duration) {
	g.timeout = d
}

// Generate produces the tailored resume and cover letter for a posting.
// Every LLM sub-call degrades independently to its fallback on failure or
// timeout, so Generate always returns usable documents.
func (g *Generator) Generate(ctx context.Context, baseResume string, posting *db.JobPosting) (string, string) {
	description := ""
	if posting.Description != nil {
		description = *posting.Description
	}

	resume := baseResume
	var coverLetter string

	if g.llm != nil && description != "" {
		analysis := g.matchAnalysis(ctx, baseResume, description, posting)
		resume = g.rewriteResume(ctx, baseResume, analysis)
		coverLetter = g.coverLetter(ctx, baseResume, posting, description)
	} else {
		coverLetter = fallbackCoverLetter(posting)
	}

	resume = truncate(resume, MaxDocumentLength)
	coverLetter = truncate(coverLetter, MaxDocumentLength)

	if g.writer != nil {
		// Best-effort: file output never fails generation
		g.writer.Write(posting, resume, coverLetter)
	}

	return resume, coverLetter
}

// matchAnalysis asks the LLM for a structured resume/posting comparison.
// Returns nil when the call fails, times out, or produces invalid JSON.
func (g *Generator) matchAnalysis(ctx context.Context, resume, description string, posting *db.JobPosting) *MatchAnalysis {
	prompt := matchAnalysisPrompt(resume, description, posting.Title, companyName(posting))

	raw, err := g.callJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("generate: match analysis failed for posting %s: %v", posting.ID, err)
		return nil
	}

	if err := validateMatchAnalysis(raw); err != nil {
		log.Printf("generate: match analysis schema rejected for posting %s: %v", posting.ID, err)
		return nil
	}

	var analysis MatchAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		log.Printf("generate: match analysis unmarshal failed for posting %s: %v", posting.ID, err)
		return nil
	}
	return &analysis
}

// rewriteResume asks the LLM for a tailored rewrite. The original resume is
// the fallback on any failure.
func (g *Generator) rewriteResume(ctx context.Context, baseResume string, analysis *MatchAnalysis) string {
	if analysis == nil {
		return baseResume
	}

	prompt := resumeRewritePrompt(baseResume, analysis)
	rewritten, err := g.callText(ctx, prompt, llm.TierStandard)
	if err != nil || rewritten == "" {
		if err != nil {
			log.Printf("generate: resume rewrite failed, keeping original: %v", err)
		}
		return baseResume
	}
	return rewritten
}

// coverLetter asks the LLM for a cover letter addressed to the recruiter.
// The deterministic template is the fallback on any failure.
func (g *Generator) coverLetter(ctx context.Context, resume string, posting *db.JobPosting, description string) string {
	prompt := coverLetterPrompt(posting.Title, companyName(posting), recruiterName(posting), description, resume)

	letter, err := g.callText(ctx, prompt, llm.TierStandard)
	if err != nil || letter == "" {
		if err != nil {
			log.Printf("generate: cover letter generation failed, using template: %v", err)
		}
		return fallbackCoverLetter(posting)
	}
	return letter
}

func (g *Generator) callText(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.llm.GenerateContent(callCtx, prompt, tier)
}

func (g *Generator) callJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.llm.GenerateJSON(callCtx, prompt, tier)
}

// companyName returns the posting's company or a neutral fallback
func companyName(posting *db.JobPosting) string {
	if posting.Company != nil && *posting.Company != "" {
		return *posting.Company
	}
	return "your company"
}

// recruiterName returns the enriched recruiter name or the generic salutation
func recruiterName(posting *db.JobPosting) string {
	if posting.RecruiterName != nil && *posting.RecruiterName != "" {
		return *posting.RecruiterName
	}
	return "Hiring Manager"
}

func truncate(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}

func matchAnalysisPrompt(resume, description, title, company string) string {
	return fmt.Sprintf(`Compare the following resume against the job posting and produce a JSON object
with exactly these fields:
  "matching_skills": array of skills present in both,
  "missing_skills": array of skills the posting wants but the resume lacks,
  "experience_summary": one paragraph on how the candidate's experience maps to the role,
  "keywords": array of posting keywords worth echoing in the resume.

Job title: %s
Company: %s

Job posting:
%s

Resume:
%s

Respond with only the JSON object.`, title, company, description, resume)
}

func resumeRewritePrompt(resume string, analysis *MatchAnalysis) string {
	analysisJSON, _ := json.Marshal(analysis)
	return fmt.Sprintf(`Rewrite the following resume to better match the role, guided by this analysis:
%s

Keep every claim truthful to the original resume: reorder, reword and emphasize,
never invent experience. Return only the rewritten resume text.

Resume:
%s`, analysisJSON, resume)
}

func coverLetterPrompt(title, company, recruiter, description, resume string) string {
	return fmt.Sprintf(`Write a concise, professional cover letter (3 short paragraphs) addressed to %s
for the %s position at %s. Reference concrete overlap between the candidate's
background and the posting. Return only the letter text.

Job posting:
%s

Resume:
%s`, recruiter, title, company, description, resume)
}
