package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>hello</main></body></html>"))
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "hello")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-url", nil)
	require.Error(t, err)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
}

func TestURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusForbidden, result.StatusCode)
}

func TestExtractText_RemovesNoise(t *testing.T) {
	html := `<html><body>
		<nav>navigation</nav>
		<main>  Senior Backend Engineer

		Build services in Go.  </main>
		<script>var x = 1;</script>
		<footer>footer junk</footer>
	</body></html>`

	text, err := ExtractText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Senior Backend Engineer")
	assert.Contains(t, text, "Build services in Go.")
	assert.NotContains(t, text, "navigation")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "footer junk")
}

func TestExtractText_FallsBackToBody(t *testing.T) {
	text, err := ExtractText("<html><body><div>plain content</div></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "plain content", text)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   "))
	assert.True(t, ShouldUseBrowser("short stub page"))

	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
