package telegram_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources/telegram"
)

const testToken = "123456:test-token"

const updatesJSON = `{
	"ok": true,
	"result": [
		{"update_id": 11, "channel_post": {"message_id": 917, "text": "visit http://abc123xyz.onion/page?x=1 now",
			"chat": {"id": -1001, "username": "cryptoleaks", "type": "channel"}}},
		{"update_id": 12},
		{"update_id": 13, "channel_post": {"message_id": 915, "text": "hello subscribers",
			"chat": {"id": -1001, "username": "cryptoleaks", "type": "channel"}}},
		{"update_id": 14, "channel_post": {"message_id": 916, "caption": "leaked wallet screenshot",
			"chat": {"id": -1001, "username": "cryptoleaks", "type": "channel"}}},
		{"update_id": 15, "channel_post": {"message_id": 99, "text": "unrelated post",
			"chat": {"id": -2002, "username": "otherchan", "type": "channel"}}}
	]
}`

func newTestSource(t *testing.T, channel string, handler http.Handler) *telegram.Source {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := sources.NewClient(sources.ClientConfig{
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
	})

	source, err := telegram.New(telegram.Config{
		ID:      "telegram-monitor",
		BaseURL: server.URL,
		Channel: channel,
		Token:   testToken,
	}, client)
	require.NoError(t, err)

	return source
}

func updatesHandler(t *testing.T, body string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bot"+testToken+"/getUpdates", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("limit"))
		require.Equal(t, `["channel_post"]`, r.URL.Query().Get("allowed_updates"))
		_, _ = w.Write([]byte(body))
	})
}

func TestNew_RequiresToken(t *testing.T) {
	client := sources.NewClient(sources.ClientConfig{})

	_, err := telegram.New(telegram.Config{ID: "telegram-monitor", Channel: "@c"}, client)
	require.Error(t, err)
	require.Contains(t, err.Error(), "token not set")
}

func TestNew_ResolvesTokenFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN_TEST", "env-token")

	client := sources.NewClient(sources.ClientConfig{})

	source, err := telegram.New(telegram.Config{
		ID:       "telegram-monitor",
		Channel:  "@c",
		TokenEnv: "TELEGRAM_BOT_TOKEN_TEST",
	}, client)
	require.NoError(t, err)
	require.Equal(t, "telegram-monitor", source.ID())
	require.True(t, source.Ordered())
}

func TestSource_ListCandidates(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, "@cryptoleaks", updatesHandler(t, updatesJSON))

	candidates, err := source.ListCandidates(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Ascending message order, other channels and non-post updates dropped.
	require.Equal(t, int64(915), candidates[0].Seq)
	require.Equal(t, int64(916), candidates[1].Seq)
	require.Equal(t, int64(917), candidates[2].Seq)
	require.Equal(t, "915", candidates[0].ID)
	require.Equal(t, "https://t.me/cryptoleaks/915", candidates[0].URL)
}

func TestSource_ListCandidates_NumericChannel(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, "-2002", updatesHandler(t, updatesJSON))

	candidates, err := source.ListCandidates(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "99", candidates[0].ID)
}

func TestSource_ListCandidates_BotAPIError(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, "@cryptoleaks",
		updatesHandler(t, `{"ok": false, "description": "Unauthorized"}`))

	_, err := source.ListCandidates(context.Background(), 50)

	var unavailable *sources.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, "telegram-monitor", unavailable.Source)
	require.Contains(t, err.Error(), "Unauthorized")
}

func TestSource_FetchBody_FromSnapshot(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, "@cryptoleaks", updatesHandler(t, updatesJSON))

	_, err := source.ListCandidates(context.Background(), 50)
	require.NoError(t, err)

	body, err := source.FetchBody(context.Background(), domain.Candidate{ID: "917"})
	require.NoError(t, err)
	require.Equal(t, "visit http://abc123xyz.onion/page?x=1 now", string(body))

	// Caption posts serve the caption as body text.
	body, err = source.FetchBody(context.Background(), domain.Candidate{ID: "916"})
	require.NoError(t, err)
	require.Equal(t, "leaked wallet screenshot", string(body))
}

func TestSource_FetchBody_OutsideSnapshot(t *testing.T) {
	t.Parallel()

	source := newTestSource(t, "@cryptoleaks", updatesHandler(t, updatesJSON))

	// Before any listing the snapshot is empty.
	_, err := source.FetchBody(context.Background(), domain.Candidate{ID: "917"})
	require.ErrorIs(t, err, sources.ErrNotFound)

	_, err = source.ListCandidates(context.Background(), 50)
	require.NoError(t, err)

	// Posts filtered out of the listing are not fetchable either.
	_, err = source.FetchBody(context.Background(), domain.Candidate{ID: "99"})
	require.ErrorIs(t, err, sources.ErrNotFound)
}

func TestSource_ListCandidates_ReplacesSnapshot(t *testing.T) {
	t.Parallel()

	first := `{"ok": true, "result": [
		{"update_id": 1, "channel_post": {"message_id": 10, "text": "old post",
			"chat": {"id": -1001, "username": "cryptoleaks", "type": "channel"}}}
	]}`
	second := `{"ok": true, "result": [
		{"update_id": 2, "channel_post": {"message_id": 11, "text": "new post",
			"chat": {"id": -1001, "username": "cryptoleaks", "type": "channel"}}}
	]}`

	calls := 0
	source := newTestSource(t, "@cryptoleaks", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(first))
			return
		}
		_, _ = w.Write([]byte(second))
	}))

	_, err := source.ListCandidates(context.Background(), 50)
	require.NoError(t, err)

	_, err = source.FetchBody(context.Background(), domain.Candidate{ID: "10"})
	require.NoError(t, err)

	_, err = source.ListCandidates(context.Background(), 50)
	require.NoError(t, err)

	_, err = source.FetchBody(context.Background(), domain.Candidate{ID: "10"})
	require.ErrorIs(t, err, sources.ErrNotFound)

	body, err := source.FetchBody(context.Background(), domain.Candidate{ID: "11"})
	require.NoError(t, err)
	require.Equal(t, "new post", string(body))
}
