package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// defaultListLimit caps GET /runs when no limit parameter is given
const defaultListLimit = 50

var validate = validator.New()

// CreateRunRequest represents the request body for POST /runs
type CreateRunRequest struct {
	Query     string   `json:"query" validate:"required,min=2,max=200"`
	Locations []string `json:"locations,omitempty" validate:"max=10,dive,min=1,max=100"`
	Sources   []string `json:"sources,omitempty" validate:"max=10,dive,min=1,max=50"`
}

// RunResponse represents a run in API responses
type RunResponse struct {
	ID         string     `json:"id"`
	Query      string     `json:"query"`
	Locations  []string   `json:"locations,omitempty"`
	Sources    []string   `json:"sources"`
	Status     string     `json:"status"`
	Stage      string     `json:"stage"`
	Counts     db.Counts  `json:"counts"`
	Error      *string    `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// PostingResponse represents a posting in API responses
type PostingResponse struct {
	ID                string                `json:"id"`
	Source            string                `json:"source"`
	Title             string                `json:"title"`
	Company           *string               `json:"company,omitempty"`
	Location          *string               `json:"location,omitempty"`
	URL               *string               `json:"url,omitempty"`
	RecruiterName     *string               `json:"recruiter_name,omitempty"`
	RecruiterEmail    *string               `json:"recruiter_email,omitempty"`
	RecruiterContacts []db.RecruiterContact `json:"recruiter_contacts,omitempty"`
	HasDocuments      bool                  `json:"has_documents"`
	EnrichedAt        *time.Time            `json:"enriched_at,omitempty"`
	GeneratedAt       *time.Time            `json:"generated_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// CoverLetterResponse represents the generated documents for a posting
type CoverLetterResponse struct {
	PostingID   string  `json:"posting_id"`
	Title       string  `json:"title"`
	Company     *string `json:"company,omitempty"`
	CoverLetter string  `json:"cover_letter"`
	Resume      string  `json:"resume,omitempty"`
}

// handleCreateRun creates a queued run and launches it in the background
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	sources := req.Sources
	if len(sources) == 0 {
		sources = s.defaultSources
	}

	run, err := s.store.CreateRun(r.Context(), req.Query, req.Locations, sources)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create run: "+err.Error())
		return
	}

	log.Printf("Starting pipeline run %s for query %q", run.ID, run.Query)
	go func() {
		// Detached from the request context: the run outlives the response
		if err := s.runner.Execute(context.Background(), run.ID); err != nil {
			log.Printf("Pipeline run %s failed: %v", run.ID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, runResponse(run))
}

// handleListRuns returns recent runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	responses := make([]RunResponse, 0, len(runs))
	for i := range runs {
		responses = append(responses, runResponse(&runs[i]))
	}
	s.jsonResponse(w, http.StatusOK, responses)
}

// handleGetRun returns the status of a single run for polling
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseID(w, r, "Invalid run ID format")
	if !ok {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, runResponse(run))
}

// handleDeleteRun deletes a run and its postings
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseID(w, r, "Invalid run ID format")
	if !ok {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	if err := s.store.DeleteRun(r.Context(), runID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete run: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListPostings returns the postings discovered by a run
func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseID(w, r, "Invalid run ID format")
	if !ok {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	postings, err := s.store.ListPostingsByRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	responses := make([]PostingResponse, 0, len(postings))
	for i := range postings {
		responses = append(responses, postingResponse(&postings[i]))
	}
	s.jsonResponse(w, http.StatusOK, responses)
}

// handleGetCoverLetter returns the generated documents for a posting
func (s *Server) handleGetCoverLetter(w http.ResponseWriter, r *http.Request) {
	postingID, ok := s.parseID(w, r, "Invalid posting ID format")
	if !ok {
		return
	}

	posting, err := s.store.GetPosting(r.Context(), postingID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if posting == nil {
		notFound := &ErrPostingNotFound{PostingID: postingID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}
	if posting.CoverLetter == nil {
		s.errorResponse(w, http.StatusNotFound, "No cover letter generated for this posting yet")
		return
	}

	resp := CoverLetterResponse{
		PostingID:   posting.ID.String(),
		Title:       posting.Title,
		Company:     posting.Company,
		CoverLetter: *posting.CoverLetter,
	}
	if posting.ResumeCustom != nil {
		resp.Resume = *posting.ResumeCustom
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// parseID extracts and parses the {id} path value
func (s *Server) parseID(w http.ResponseWriter, r *http.Request, invalidMsg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, invalidMsg)
		return uuid.Nil, false
	}
	return id, true
}

func runResponse(run *db.Run) RunResponse {
	counts := run.Counts
	if counts == nil {
		counts = db.Counts{}
	}
	return RunResponse{
		ID:         run.ID.String(),
		Query:      run.Query,
		Locations:  run.Locations,
		Sources:    run.Sources,
		Status:     run.Status,
		Stage:      run.Stage,
		Counts:     counts,
		Error:      run.Error,
		CreatedAt:  run.CreatedAt,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

func postingResponse(p *db.JobPosting) PostingResponse {
	return PostingResponse{
		ID:                p.ID.String(),
		Source:            p.Source,
		Title:             p.Title,
		Company:           p.Company,
		Location:          p.Location,
		URL:               p.URL,
		RecruiterName:     p.RecruiterName,
		RecruiterEmail:    p.RecruiterEmail,
		RecruiterContacts: p.RecruiterContacts,
		HasDocuments:      p.CoverLetter != nil,
		EnrichedAt:        p.EnrichedAt,
		GeneratedAt:       p.GeneratedAt,
		CreatedAt:         p.CreatedAt,
	}
}
