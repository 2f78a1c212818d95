package contacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a scripted people-search provider
type fakeProvider struct {
	t            *testing.T
	searchCalls  atomic.Int32
	unlockCalls  atomic.Int32
	totalCalls   atomic.Int32
	rateLimitRem atomic.Int32 // respond 429 while > 0

	// searchFn decides the people returned for a decoded search request
	searchFn func(req searchRequest) []personRecord
	// unlockEmail is returned for every unlock call
	unlockEmail string
}

func (f *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mixed_people/search", func(w http.ResponseWriter, r *http.Request) {
		f.totalCalls.Add(1)
		if f.rateLimitRem.Load() > 0 {
			f.rateLimitRem.Add(-1)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		f.searchCalls.Add(1)

		var req searchRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

		var people []personRecord
		if f.searchFn != nil {
			people = f.searchFn(req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(searchResponse{People: people})
	})
	mux.HandleFunc("POST /people/match", func(w http.ResponseWriter, r *http.Request) {
		f.totalCalls.Add(1)
		f.unlockCalls.Add(1)

		var req unlockRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(f.t, req.RevealEmail)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(unlockResponse{Email: f.unlockEmail})
	})
	return mux
}

func newTestClient(t *testing.T, provider *fakeProvider) (*SearchClient, *httptest.Server) {
	srv := httptest.NewServer(provider.handler())
	t.Cleanup(srv.Close)

	client := NewSearchClient("test-key")
	client.SetBaseURL(srv.URL)
	client.SetBackoff(time.Millisecond)
	return client, srv
}

func TestFindContact_ShortCircuitsWithoutNetwork(t *testing.T) {
	provider := &fakeProvider{t: t}
	client, _ := newTestClient(t, provider)

	contact, err := client.FindContact(context.Background(), "", "Engineer")
	require.NoError(t, err)
	assert.Nil(t, contact)

	contact, err = client.FindContact(context.Background(), "Acme", "")
	require.NoError(t, err)
	assert.Nil(t, contact)

	assert.Equal(t, int32(0), provider.totalCalls.Load())
}

func TestFindContact_NoCredentialShortCircuits(t *testing.T) {
	provider := &fakeProvider{t: t}
	srv := httptest.NewServer(provider.handler())
	defer srv.Close()

	client := NewSearchClient("")
	client.SetBaseURL(srv.URL)

	contact, err := client.FindContact(context.Background(), "Acme", "Engineer")
	require.NoError(t, err)
	assert.Nil(t, contact)
	assert.Equal(t, int32(0), provider.totalCalls.Load())
}

func TestFindContact_FirstPhaseHit(t *testing.T) {
	provider := &fakeProvider{
		t: t,
		searchFn: func(req searchRequest) []personRecord {
			assert.Equal(t, "Acme", req.OrganizationName)
			return []personRecord{
				{ID: "p1", Name: "Jane Doe", Title: "Senior Technical Recruiter", LinkedinURL: "https://linkedin.com/in/janedoe"},
			}
		},
		unlockEmail: "jane@acme.com",
	}
	client, _ := newTestClient(t, provider)

	contact, err := client.FindContact(context.Background(), "Acme", "Software Engineer")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Jane Doe", contact.Name)
	assert.Equal(t, "jane@acme.com", contact.Email)
	assert.Equal(t, "https://linkedin.com/in/janedoe", contact.LinkedinURL)

	// One search phase, one unlock
	assert.Equal(t, int32(1), provider.searchCalls.Load())
	assert.Equal(t, int32(1), provider.unlockCalls.Load())
}

func TestFindContact_LocationRelaxedPhase(t *testing.T) {
	// Only the fourth phase (no titles, no locations) returns a person
	provider := &fakeProvider{
		t: t,
		searchFn: func(req searchRequest) []personRecord {
			if len(req.PersonTitles) == 0 && len(req.PersonLocations) == 0 {
				return []personRecord{{ID: "p9", Name: "Jane Doe", Title: "Senior Technical Recruiter"}}
			}
			return nil
		},
		unlockEmail: "jane@acme.com",
	}
	client, _ := newTestClient(t, provider)

	contact, err := client.FindContact(context.Background(), "Acme", "Software Engineer")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Jane Doe", contact.Name)
	assert.Equal(t, "jane@acme.com", contact.Email)
	assert.Equal(t, int32(4), provider.searchCalls.Load())
}

func TestFindContact_EmptyUnlockIsNotAnError(t *testing.T) {
	provider := &fakeProvider{
		t: t,
		searchFn: func(searchRequest) []personRecord {
			return []personRecord{{ID: "p1", Name: "Jane Doe", Title: "Recruiter"}}
		},
		unlockEmail: "",
	}
	client, _ := newTestClient(t, provider)

	contact, err := client.FindContact(context.Background(), "Acme", "Software Engineer")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Jane Doe", contact.Name)
	assert.Empty(t, contact.Email)
}

func TestFindContact_CachesResults(t *testing.T) {
	provider := &fakeProvider{
		t: t,
		searchFn: func(searchRequest) []personRecord {
			return []personRecord{{ID: "p1", Name: "Jane Doe", Title: "Recruiter"}}
		},
		unlockEmail: "jane@acme.com",
	}
	client, _ := newTestClient(t, provider)
	ctx := context.Background()

	first, err := client.FindContact(ctx, "Acme", "Software Engineer")
	require.NoError(t, err)
	callsAfterFirst := provider.totalCalls.Load()

	// Same pair, different casing: served from cache, no new network calls
	second, err := client.FindContact(ctx, "ACME", "software engineer")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, provider.totalCalls.Load())
}

func TestFindContact_CachesNegativeResults(t *testing.T) {
	provider := &fakeProvider{t: t}
	client, _ := newTestClient(t, provider)
	ctx := context.Background()

	contact, err := client.FindContact(ctx, "Acme", "Software Engineer")
	require.NoError(t, err)
	assert.Nil(t, contact)
	callsAfterFirst := provider.totalCalls.Load()
	assert.Equal(t, int32(4), callsAfterFirst) // all four phases attempted

	contact, err = client.FindContact(ctx, "Acme", "Software Engineer")
	require.NoError(t, err)
	assert.Nil(t, contact)
	assert.Equal(t, callsAfterFirst, provider.totalCalls.Load())
}

func TestSearch_RetriesOnceOnRateLimit(t *testing.T) {
	provider := &fakeProvider{
		t: t,
		searchFn: func(req searchRequest) []personRecord {
			return []personRecord{{ID: "p1", Name: "Jane Doe", Title: "Recruiter"}}
		},
		unlockEmail: "jane@acme.com",
	}
	provider.rateLimitRem.Store(1)
	client, _ := newTestClient(t, provider)

	contact, err := client.FindContact(context.Background(), "Acme", "Software Engineer")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Jane Doe", contact.Name)
}

func TestFindContacts_SkipsCandidatesWithoutEmail(t *testing.T) {
	provider := &fakeProvider{
		t: t,
		searchFn: func(searchRequest) []personRecord {
			return []personRecord{
				{ID: "p1", Name: "No Email", Title: "Recruiter"},
				{ID: "p2", Name: "Also None", Title: "Technical Recruiter"},
			}
		},
		unlockEmail: "",
	}
	client, _ := newTestClient(t, provider)

	contacts := client.FindContacts(context.Background(), "Acme", "Software Engineer", 5)
	assert.Empty(t, contacts)
	assert.Equal(t, int32(2), provider.unlockCalls.Load())
}

func TestFindContacts_CapsResults(t *testing.T) {
	provider := &fakeProvider{
		t: t,
		searchFn: func(searchRequest) []personRecord {
			return []personRecord{
				{ID: "p1", Name: "A", Title: "Recruiter"},
				{ID: "p2", Name: "B", Title: "Recruiter"},
				{ID: "p3", Name: "C", Title: "Recruiter"},
			}
		},
		unlockEmail: "rec@acme.com",
	}
	client, _ := newTestClient(t, provider)

	contacts := client.FindContacts(context.Background(), "Acme", "Software Engineer", 2)
	require.Len(t, contacts, 2)
	for _, c := range contacts {
		assert.Equal(t, "rec@acme.com", c.Email)
	}
}
