package contacts

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the people-search provider endpoint
const DefaultBaseURL = "https://api.apollo.io/api/v1"

// rateLimitBackoff is how long to wait before the single retry on HTTP 429
const rateLimitBackoff = 1200 * time.Millisecond

// defaultLocation constrains the first three search phases
const defaultLocation = "United States"

// maxDynamicTitles caps the title list built from derived phrases
const maxDynamicTitles = 20

const searchPerPage = 25

// commonRecruitingTitles is the fixed title list for the first search phase
var commonRecruitingTitles = []string{
	"Recruiter",
	"Technical Recruiter",
	"Senior Recruiter",
	"Senior Technical Recruiter",
	"Lead Recruiter",
	"Talent Acquisition",
	"Talent Acquisition Specialist",
	"Talent Acquisition Manager",
	"Talent Acquisition Partner",
	"Head of Talent Acquisition",
	"Director of Talent Acquisition",
	"Talent Sourcer",
	"Sourcer",
	"Technical Sourcer",
	"Recruiting Manager",
	"Recruiting Coordinator",
	"Staffing Manager",
	"Staffing Specialist",
	"People Ops",
	"HR Manager",
}

// dynamicTitleSuffixes combine with phrases derived from the job title in the
// second search phase
var dynamicTitleSuffixes = []string{
	"%s recruiter",
	"%s sourcer",
	"%s talent acquisition",
	"recruiter %s",
}

// Contact is a resolved recruiting contact. Email may be empty when the
// provider had no email on file or the unlock was quota-blocked; it is never
// fabricated.
type Contact struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Email       string `json:"email,omitempty"`
	LinkedinURL string `json:"linkedin_url,omitempty"`
}

// SearchClient talks to the people-search provider. Lookups are cached
// in-memory for the process lifetime, negative results included, so a
// repeated (company, title) pair never re-hits the network. The cache is
// additive and never evicted; growth is bounded by the variety of
// company/title pairs a deployment sees, which is an accepted tradeoff.
type SearchClient struct {
	http    *resty.Client
	apiKey  string
	backoff time.Duration

	mu    sync.Mutex
	cache map[string]*Contact
}

// NewSearchClient creates a client for the people-search provider.
// An empty apiKey is allowed: every lookup then short-circuits to no result
// without network calls.
func NewSearchClient(apiKey string) *SearchClient {
	client := resty.New()
	client.SetBaseURL(DefaultBaseURL)
	client.SetTimeout(15 * time.Second)
	client.SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}

	return &SearchClient{
		http:    client,
		apiKey:  apiKey,
		backoff: rateLimitBackoff,
		cache:   make(map[string]*Contact),
	}
}

// SetBaseURL points the client at a different provider endpoint (tests)
func (c *SearchClient) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(baseURL)
}

// SetBackoff overrides the rate-limit retry delay (tests)
func (c *SearchClient) SetBackoff(d time.Duration) {
	c.backoff = d
}

// FindContact locates the best-guess recruiting contact for a company and
// job title. Returns nil with no error when the inputs or credential are
// missing, when every search phase comes up empty, or when all provider
// calls fail; provider failures are logged, never propagated.
func (c *SearchClient) FindContact(ctx context.Context, company, jobTitle string) (*Contact, error) {
	if company == "" || jobTitle == "" || c.apiKey == "" {
		return nil, nil
	}

	key := cacheKey(company, jobTitle)
	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	contact := c.lookup(ctx, company, jobTitle)

	c.mu.Lock()
	c.cache[key] = contact
	c.mu.Unlock()

	return contact, nil
}

// FindContacts returns up to maxResults ranked contacts that have a
// successfully unlocked email. Candidates without an email are skipped
// entirely, unlike FindContact which returns name-only results.
func (c *SearchClient) FindContacts(ctx context.Context, company, jobTitle string, maxResults int) []Contact {
	if company == "" || jobTitle == "" || c.apiKey == "" || maxResults <= 0 {
		return nil
	}

	ranked := c.phasedSearch(ctx, company, jobTitle)

	var contacts []Contact
	for _, candidate := range ranked {
		if len(contacts) >= maxResults {
			break
		}
		email, err := c.unlockEmail(ctx, candidate.ProviderID)
		if err != nil {
			log.Printf("contacts: email unlock failed for %q at %q: %v", candidate.Name, company, err)
			continue
		}
		if email == "" {
			continue
		}
		contacts = append(contacts, Contact{
			Name:        candidate.Name,
			Title:       candidate.Title,
			Email:       email,
			LinkedinURL: candidate.LinkedinURL,
		})
	}
	return contacts
}

// lookup runs the phased search and unlocks the top candidate's email
func (c *SearchClient) lookup(ctx context.Context, company, jobTitle string) *Contact {
	ranked := c.phasedSearch(ctx, company, jobTitle)
	if len(ranked) == 0 {
		return nil
	}

	top := ranked[0]
	contact := &Contact{
		Name:        top.Name,
		Title:       top.Title,
		LinkedinURL: top.LinkedinURL,
	}

	// The unlock may legitimately yield no email; the contact is still
	// returned name-only in that case.
	email, err := c.unlockEmail(ctx, top.ProviderID)
	if err != nil {
		log.Printf("contacts: email unlock failed for %q at %q: %v", top.Name, company, err)
		return contact
	}
	contact.Email = email
	return contact
}

// phasedSearch escalates from specific to broad queries, stopping at the
// first phase that yields at least one ranked candidate:
//  1. common recruiting titles, default location
//  2. titles derived from the job title, default location
//  3. no title filter, default location
//  4. no title filter, no location filter
func (c *SearchClient) phasedSearch(ctx context.Context, company, jobTitle string) []RankedCandidate {
	phases := []struct {
		name      string
		titles    []string
		locations []string
	}{
		{"generic", commonRecruitingTitles, []string{defaultLocation}},
		{"dynamic", dynamicTitles(jobTitle), []string{defaultLocation}},
		{"broad", nil, []string{defaultLocation}},
		{"location-relaxed", nil, nil},
	}

	for _, phase := range phases {
		candidates, err := c.searchPeople(ctx, company, phase.titles, phase.locations)
		if err != nil {
			log.Printf("contacts: %s search failed for %q: %v", phase.name, company, err)
			continue
		}
		if ranked := Rank(jobTitle, candidates); len(ranked) > 0 {
			return ranked
		}
	}
	return nil
}

// dynamicTitles builds candidate recruiting titles from job-title phrases
func dynamicTitles(jobTitle string) []string {
	var titles []string
	for _, phrase := range DerivePhrases(jobTitle) {
		for _, suffix := range dynamicTitleSuffixes {
			if len(titles) >= maxDynamicTitles {
				return titles
			}
			titles = append(titles, fmt.Sprintf(suffix, phrase))
		}
	}
	return titles
}

type searchRequest struct {
	OrganizationName string   `json:"organization_name"`
	PersonTitles     []string `json:"person_titles,omitempty"`
	PersonLocations  []string `json:"person_locations,omitempty"`
	Page             int      `json:"page"`
	PerPage          int      `json:"per_page"`
}

type personRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Title       string `json:"title"`
	LinkedinURL string `json:"linkedin_url"`
}

type searchResponse struct {
	People []personRecord `json:"people"`
}

// searchPeople queries the provider for people at the company. A single
// retry with a short backoff is performed on HTTP 429; any other non-2xx
// response is terminal for the call.
func (c *SearchClient) searchPeople(ctx context.Context, company string, titles, locations []string) ([]Candidate, error) {
	body := searchRequest{
		OrganizationName: company,
		PersonTitles:     titles,
		PersonLocations:  locations,
		Page:             1,
		PerPage:          searchPerPage,
	}

	var parsed searchResponse
	resp, err := c.post(ctx, "/mixed_people/search", body, &parsed)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("people search returned HTTP %d", resp.StatusCode())
	}

	var candidates []Candidate
	for _, person := range parsed.People {
		name := person.Name
		if name == "" {
			name = strings.TrimSpace(person.FirstName + " " + person.LastName)
		}
		candidates = append(candidates, Candidate{
			Name:        name,
			Title:       person.Title,
			ProviderID:  person.ID,
			LinkedinURL: person.LinkedinURL,
		})
	}
	return candidates, nil
}

type unlockRequest struct {
	ID          string `json:"id"`
	RevealEmail bool   `json:"reveal_email"`
}

type unlockResponse struct {
	Email string `json:"email"`
}

// unlockEmail reveals a candidate's email address. An empty email in a
// successful response is a legitimate outcome, not an error.
func (c *SearchClient) unlockEmail(ctx context.Context, providerID string) (string, error) {
	if providerID == "" {
		return "", nil
	}

	var parsed unlockResponse
	resp, err := c.post(ctx, "/people/match", unlockRequest{ID: providerID, RevealEmail: true}, &parsed)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("email unlock returned HTTP %d", resp.StatusCode())
	}
	return parsed.Email, nil
}

// post issues a JSON POST, retrying once after a short backoff when the
// provider responds with HTTP 429.
func (c *SearchClient) post(ctx context.Context, path string, body, result any) (*resty.Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(path)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == 429 {
		select {
		case <-time.After(c.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(result).
			Post(path)
	}

	return resp, nil
}

func cacheKey(company, jobTitle string) string {
	return strings.ToLower(company) + "|" + strings.ToLower(jobTitle)
}
