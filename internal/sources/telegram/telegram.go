// Package telegram implements the messaging-channel source over the Bot API.
// Channel posts are listed with getUpdates; message IDs are monotonically
// increasing, so progress is tracked with a scalar watermark.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

const (
	// DefaultBaseURL is the Bot API root.
	DefaultBaseURL = "https://api.telegram.org"

	// maxUpdatesPerCall is the Bot API cap on getUpdates page size.
	maxUpdatesPerCall = 100
)

// Config configures a telegram channel source.
type Config struct {
	ID      string
	BaseURL string
	// Channel selects which chat's posts to monitor: a public username
	// (with or without the leading @) or a numeric chat ID.
	Channel string
	// Token is the bot token. When empty it is read from the environment
	// variable named by TokenEnv.
	Token    string
	TokenEnv string
}

// Source polls a channel through the Bot API. Bodies are served from the
// snapshot taken at list time, so a fetch for a message outside the last
// listing reports not found.
type Source struct {
	id      string
	baseURL string
	token   string
	channel string
	client  *sources.Client

	mu       sync.Mutex
	snapshot map[string][]byte
}

var _ sources.Source = (*Source)(nil)

// New creates a telegram source on the shared HTTP client. The bot token
// must be set directly or resolvable through the configured environment
// variable.
func New(cfg Config, client *sources.Client) (*Source, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	token := cfg.Token
	if token == "" && cfg.TokenEnv != "" {
		token = os.Getenv(cfg.TokenEnv)
	}
	if token == "" {
		return nil, fmt.Errorf("telegram token not set for source %s (env %s)", cfg.ID, cfg.TokenEnv)
	}

	return &Source{
		id:       cfg.ID,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		token:    token,
		channel:  cfg.Channel,
		client:   client,
		snapshot: make(map[string][]byte),
	}, nil
}

// ID returns the configured source identifier.
func (s *Source) ID() string {
	return s.id
}

// Ordered reports true: message IDs increase monotonically per chat.
func (s *Source) Ordered() bool {
	return true
}

// ListCandidates polls getUpdates and returns the channel's posts in
// ascending message order, replacing the body snapshot.
func (s *Source) ListCandidates(ctx context.Context, limit int) ([]domain.Candidate, error) {
	if limit <= 0 || limit > maxUpdatesPerCall {
		limit = maxUpdatesPerCall
	}

	body, err := s.client.Get(ctx, s.updatesURL(limit))
	if err != nil {
		return nil, &sources.UnavailableError{Source: s.id, Cause: err}
	}

	var resp updatesResponse
	if unmarshalErr := json.Unmarshal(body, &resp); unmarshalErr != nil {
		return nil, &sources.UnavailableError{Source: s.id, Cause: fmt.Errorf("parse updates: %w", unmarshalErr)}
	}
	if !resp.OK {
		return nil, &sources.UnavailableError{Source: s.id, Cause: fmt.Errorf("bot api error: %s", resp.Description)}
	}

	candidates := make([]domain.Candidate, 0, len(resp.Result))
	snapshot := make(map[string][]byte, len(resp.Result))

	for _, u := range resp.Result {
		post := u.ChannelPost
		if post == nil || !s.channelMatches(post.Chat) {
			continue
		}

		id := strconv.FormatInt(post.MessageID, 10)
		if _, dup := snapshot[id]; dup {
			continue
		}
		snapshot[id] = []byte(post.text())

		candidates = append(candidates, domain.Candidate{
			ID:  id,
			Seq: post.MessageID,
			URL: messageURL(post),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Seq < candidates[j].Seq
	})

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	return candidates, nil
}

// FetchBody serves a message body from the last listing snapshot.
func (s *Source) FetchBody(_ context.Context, candidate domain.Candidate) ([]byte, error) {
	s.mu.Lock()
	body, ok := s.snapshot[candidate.ID]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("message %s not in listing snapshot: %w", candidate.ID, sources.ErrNotFound)
	}

	return body, nil
}

// updatesURL builds the getUpdates endpoint for one poll.
func (s *Source) updatesURL(limit int) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("allowed_updates", `["channel_post"]`)

	return fmt.Sprintf("%s/bot%s/getUpdates?%s", s.baseURL, s.token, params.Encode())
}

// channelMatches reports whether a chat is the monitored channel. An empty
// configured channel accepts every channel post the bot can see.
func (s *Source) channelMatches(c chat) bool {
	want := strings.TrimPrefix(s.channel, "@")
	if want == "" {
		return true
	}
	if strings.EqualFold(c.Username, want) {
		return true
	}

	return strconv.FormatInt(c.ID, 10) == want
}

// messageURL builds the public t.me link for a post when the chat has a
// public username.
func messageURL(m *message) string {
	if m.Chat.Username == "" {
		return ""
	}

	return fmt.Sprintf("https://t.me/%s/%d", m.Chat.Username, m.MessageID)
}

// updatesResponse is the getUpdates response envelope.
type updatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description,omitempty"`
	Result      []update `json:"result"`
}

type update struct {
	UpdateID    int64    `json:"update_id"`
	ChannelPost *message `json:"channel_post"`
}

type message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Caption   string `json:"caption"`
	Chat      chat   `json:"chat"`
}

// text returns the scannable content of a post: the text for text posts, the
// caption for media posts.
func (m *message) text() string {
	if m.Text != "" {
		return m.Text
	}

	return m.Caption
}

type chat struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Type     string `json:"type"`
}
