package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indeedListingHTML = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a data-jk="abc123" href="/viewjob?jk=abc123"><span title="Senior Go Engineer">Senior Go Engineer</span></a></h2>
  <span data-testid="company-name">Acme Corp</span>
  <div data-testid="text-location">Remote</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/viewjob?jk=def456"><span>Backend Developer</span></a></h2>
  <span data-testid="company-name">Globex</span>
</div>
<div class="job_seen_beacon">
  <span data-testid="company-name">Card Without Title</span>
</div>
</body></html>`

func TestBoardSource_ParseListing(t *testing.T) {
	source := NewIndeedSource(false)

	postings, err := source.parseListing(indeedListingHTML)
	require.NoError(t, err)
	require.Len(t, postings, 2)

	assert.Equal(t, "Senior Go Engineer", postings[0].Title)
	assert.Equal(t, "Acme Corp", postings[0].Company)
	assert.Equal(t, "Remote", postings[0].Location)
	assert.Equal(t, "abc123", postings[0].ExternalID)
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=abc123", postings[0].URL)

	assert.Equal(t, "Backend Developer", postings[1].Title)
	assert.Equal(t, "Globex", postings[1].Company)
	assert.Empty(t, postings[1].Location)
}

func TestBoardSource_ParseListing_Empty(t *testing.T) {
	source := NewIndeedSource(false)
	postings, err := source.parseListing("<html><body><p>No results found</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestBoardSource_Names(t *testing.T) {
	assert.Equal(t, "indeed", NewIndeedSource(false).Name())
	assert.Equal(t, "remotive", NewRemotiveSource().Name())
}
