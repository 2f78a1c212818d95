package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-pilot/internal/db"
	"github.com/jonathan/recruit-pilot/internal/llm"
)

// fakeLLM scripts responses per call kind
type fakeLLM struct {
	jsonResponse string
	jsonErr      error
	textResponse string
	textErr      error
	delay        time.Duration
	textCalls    int
	jsonCalls    int
}

func (f *fakeLLM) GenerateContent(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
	f.textCalls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.textResponse, f.textErr
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
	f.jsonCalls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.jsonResponse, f.jsonErr
}

func (f *fakeLLM) Close() error { return nil }

const validAnalysisJSON = `{
	"matching_skills": ["Go", "PostgreSQL"],
	"missing_skills": ["Kubernetes"],
	"experience_summary": "Strong backend background.",
	"keywords": ["microservices"]
}`

func testPosting() *db.JobPosting {
	return &db.JobPosting{
		ID:          uuid.New(),
		Title:       "python developer",
		Company:     db.StrPtr("Acme Corp"),
		Description: db.StrPtr("Build data pipelines and internal services with Python and PostgreSQL."),
	}
}

func TestGenerate_NoLLM_Deterministic(t *testing.T) {
	gen := New(nil, nil)
	posting := testPosting()

	resume1, letter1 := gen.Generate(context.Background(), "my base resume", posting)
	resume2, letter2 := gen.Generate(context.Background(), "my base resume", posting)

	assert.Equal(t, "my base resume", resume1)
	assert.Equal(t, resume1, resume2)
	assert.Equal(t, letter1, letter2)

	assert.Contains(t, letter1, "python developer")
	assert.Contains(t, letter1, "Acme Corp")
	assert.Contains(t, letter1, "Dear Hiring Manager")
	assert.Contains(t, letter1, "Best regards")
}

func TestGenerate_NoCompany_UsesFallbackName(t *testing.T) {
	gen := New(nil, nil)
	posting := testPosting()
	posting.Company = nil

	_, letter := gen.Generate(context.Background(), "resume", posting)
	assert.Contains(t, letter, "your company")
}

func TestGenerate_RecruiterNameAddressed(t *testing.T) {
	gen := New(nil, nil)
	posting := testPosting()
	posting.RecruiterName = db.StrPtr("Jane Doe")

	_, letter := gen.Generate(context.Background(), "resume", posting)
	assert.Contains(t, letter, "Dear Jane Doe")
}

func TestGenerate_NoDescription_SkipsLLM(t *testing.T) {
	client := &fakeLLM{}
	gen := New(client, nil)
	posting := testPosting()
	posting.Description = nil

	resume, letter := gen.Generate(context.Background(), "base resume", posting)
	assert.Equal(t, "base resume", resume)
	assert.NotEmpty(t, letter)
	assert.Zero(t, client.textCalls)
	assert.Zero(t, client.jsonCalls)
}

func TestGenerate_LLMPath(t *testing.T) {
	client := &fakeLLM{
		jsonResponse: validAnalysisJSON,
		textResponse: "rewritten output",
	}
	gen := New(client, nil)

	resume, letter := gen.Generate(context.Background(), "base resume", testPosting())
	assert.Equal(t, "rewritten output", resume)
	assert.Equal(t, "rewritten output", letter)
	assert.Equal(t, 1, client.jsonCalls)  // analysis
	assert.Equal(t, 2, client.textCalls) // rewrite + cover letter
}

func TestGenerate_LLMFailureDegradesToFallbacks(t *testing.T) {
	client := &fakeLLM{
		jsonErr: errors.New("provider down"),
		textErr: errors.New("provider down"),
	}
	gen := New(client, nil)
	posting := testPosting()

	resume, letter := gen.Generate(context.Background(), "base resume", posting)
	assert.Equal(t, "base resume", resume)
	assert.Contains(t, letter, "python developer")
	assert.Contains(t, letter, "Acme Corp")
}

func TestGenerate_TimeoutDegradesToFallbacks(t *testing.T) {
	client := &fakeLLM{
		jsonResponse: validAnalysisJSON,
		textResponse: "never arrives in time",
		delay:        200 * time.Millisecond,
	}
	gen := New(client, nil)
	gen.SetTimeout(10 * time.Millisecond)
	posting := testPosting()

	resume, letter := gen.Generate(context.Background(), "base resume", posting)
	assert.Equal(t, "base resume", resume)
	assert.Contains(t, letter, "Acme Corp")
}

func TestGenerate_InvalidAnalysisJSONDiscarded(t *testing.T) {
	client := &fakeLLM{
		jsonResponse: `{"matching_skills": "not an array"}`,
		textResponse: "cover letter text",
	}
	gen := New(client, nil)

	resume, _ := gen.Generate(context.Background(), "base resume", testPosting())
	// Rewrite is skipped entirely when the analysis is rejected
	assert.Equal(t, "base resume", resume)
}

func TestGenerate_TruncatesOutput(t *testing.T) {
	gen := New(nil, nil)
	longResume := strings.Repeat("x", MaxDocumentLength+5000)

	resume, letter := gen.Generate(context.Background(), longResume, testPosting())
	assert.Len(t, resume, MaxDocumentLength)
	assert.LessOrEqual(t, len(letter), MaxDocumentLength)
}

func TestDocumentWriter_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	gen := New(nil, NewDocumentWriter(dir))
	posting := testPosting()

	gen.Generate(context.Background(), "base resume", posting)

	base := filepath.Join(dir, posting.ID.String())
	resumeBytes, err := os.ReadFile(filepath.Join(base, "resume.txt"))
	require.NoError(t, err)
	assert.Equal(t, "base resume", string(resumeBytes))

	letterBytes, err := os.ReadFile(filepath.Join(base, "cover_letter.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(letterBytes), "Acme Corp")

	htmlBytes, err := os.ReadFile(filepath.Join(base, "resume.html"))
	require.NoError(t, err)
	assert.Contains(t, string(htmlBytes), "<!DOCTYPE html>")
}

func TestValidateMatchAnalysis(t *testing.T) {
	assert.NoError(t, validateMatchAnalysis(validAnalysisJSON))
	assert.Error(t, validateMatchAnalysis(`{"matching_skills": []}`))
	assert.Error(t, validateMatchAnalysis(`{"matching_skills": "x", "missing_skills": [], "experience_summary": "s", "keywords": []}`))
	assert.Error(t, validateMatchAnalysis(`not json`))
}

func TestDescriptionExcerpt(t *testing.T) {
	short := "Build data pipelines."
	assert.Equal(t, short, descriptionExcerpt(short))

	long := strings.Repeat("pipeline engineering ", 30)
	excerpt := descriptionExcerpt(long)
	assert.LessOrEqual(t, len(excerpt), descriptionExcerptLength+3)
	assert.True(t, strings.HasSuffix(excerpt, "..."))
}
