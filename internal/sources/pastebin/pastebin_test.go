package pastebin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources/pastebin"
)

const archiveHTML = `<!DOCTYPE html>
<html>
<body>
<table class="maintable">
	<tr><th>Name</th><th>Added</th><th>Syntax</th></tr>
	<tr>
		<td><a href="/abc123Xy">crypto dump</a></td>
		<td>2 mins ago</td>
		<td><a href="/archive/text">None</a></td>
	</tr>
	<tr>
		<td><a href="/Zz88Qq11">wallet list</a></td>
		<td>5 mins ago</td>
		<td><a href="/archive/python">Python</a></td>
	</tr>
	<tr>
		<td><a href="/abc123Xy">crypto dump repost</a></td>
		<td>9 mins ago</td>
		<td><a href="/archive/go">Go</a></td>
	</tr>
	<tr>
		<td><a href="/KkLlMm22">notes</a></td>
		<td>12 mins ago</td>
		<td><a href="/login">None</a></td>
	</tr>
</table>
</body>
</html>`

func newTestSource(t *testing.T, handler http.Handler) *pastebin.Source {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := sources.NewClient(sources.ClientConfig{
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
	})

	return pastebin.New(pastebin.Config{ID: "pastebin-archive", BaseURL: server.URL}, client)
}

func archiveHandler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/archive", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(archiveHTML))
	})
	mux.HandleFunc("/raw/abc123Xy", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("free bitcoin at t.me/group123"))
	})
	mux.HandleFunc("/raw/limited1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return mux
}

func TestSource_ListCandidates(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, archiveHandler(t))

	require.Equal(t, "pastebin-archive", source.ID())
	require.False(t, source.Ordered())

	candidates, err := source.ListCandidates(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Page order, duplicates collapsed, nav and syntax links ignored.
	require.Equal(t, "abc123Xy", candidates[0].ID)
	require.Equal(t, "Zz88Qq11", candidates[1].ID)
	require.Equal(t, "KkLlMm22", candidates[2].ID)

	for _, candidate := range candidates {
		require.Zero(t, candidate.Seq, "paste keys carry no order")
		require.Contains(t, candidate.URL, "/"+candidate.ID)
	}
}

func TestSource_ListCandidates_RespectsLimit(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, archiveHandler(t))

	candidates, err := source.ListCandidates(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "abc123Xy", candidates[0].ID)
	require.Equal(t, "Zz88Qq11", candidates[1].ID)
}

func TestSource_ListCandidates_Unavailable(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := source.ListCandidates(context.Background(), 10)

	var unavailable *sources.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, "pastebin-archive", unavailable.Source)
}

func TestSource_FetchBody(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, archiveHandler(t))

	body, err := source.FetchBody(context.Background(), domain.Candidate{ID: "abc123Xy"})
	require.NoError(t, err)
	require.Equal(t, "free bitcoin at t.me/group123", string(body))
}

func TestSource_FetchBody_NotFound(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, archiveHandler(t))

	_, err := source.FetchBody(context.Background(), domain.Candidate{ID: "expired1"})
	require.ErrorIs(t, err, sources.ErrNotFound)
}

func TestSource_FetchBody_RateLimited(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, archiveHandler(t))

	_, err := source.FetchBody(context.Background(), domain.Candidate{ID: "limited1"})
	require.True(t, sources.IsRateLimited(err))

	var rateErr *sources.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, 15*time.Second, rateErr.RetryAfter)
}

func TestSource_FetchBody_WrapsCandidateID(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, archiveHandler(t))

	_, err := source.FetchBody(context.Background(), domain.Candidate{ID: "expired1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "expired1")
	require.True(t, errors.Is(err, sources.ErrNotFound))
}
