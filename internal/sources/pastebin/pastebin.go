// Package pastebin implements the paste-archive source. The public archive
// page is scraped for recent paste keys and bodies come from the raw-paste
// endpoint.
package pastebin

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

const (
	// DefaultBaseURL is the public paste site root.
	DefaultBaseURL = "https://pastebin.com"

	// archivePath lists the most recent public pastes.
	archivePath = "/archive"

	// rawPathPrefix serves a paste's plain-text body.
	rawPathPrefix = "/raw/"

	// archiveLinkSelector matches the anchors inside the archive listing table.
	archiveLinkSelector = "table.maintable tr td a"

	// pasteKeyLength is the length of a public paste key.
	pasteKeyLength = 8
)

// Config configures a pastebin source.
type Config struct {
	ID      string
	BaseURL string
}

// Source lists recent public pastes and fetches their raw bodies. Paste keys
// carry no usable order, so Ordered reports false and runs deduplicate
// through the seen-item store.
type Source struct {
	id      string
	baseURL string
	client  *sources.Client
}

var _ sources.Source = (*Source)(nil)

// New creates a pastebin source on the shared HTTP client.
func New(cfg Config, client *sources.Client) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &Source{
		id:      cfg.ID,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  client,
	}
}

// ID returns the configured source identifier.
func (s *Source) ID() string {
	return s.id
}

// Ordered reports false: paste keys are random strings.
func (s *Source) Ordered() bool {
	return false
}

// ListCandidates scrapes the archive page for the newest paste keys, in page
// order. A limit of zero or less means no cap.
func (s *Source) ListCandidates(ctx context.Context, limit int) ([]domain.Candidate, error) {
	body, err := s.client.Get(ctx, s.baseURL+archivePath)
	if err != nil {
		return nil, &sources.UnavailableError{Source: s.id, Cause: err}
	}

	doc, parseErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if parseErr != nil {
		return nil, &sources.UnavailableError{Source: s.id, Cause: fmt.Errorf("parse archive html: %w", parseErr)}
	}

	var candidates []domain.Candidate
	seen := make(map[string]struct{})

	doc.Find(archiveLinkSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, exists := sel.Attr("href")
		if !exists {
			return true
		}

		key, ok := pasteKeyFromHref(href)
		if !ok {
			return true
		}
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		candidates = append(candidates, domain.Candidate{
			ID:  key,
			URL: s.baseURL + "/" + key,
		})

		return limit <= 0 || len(candidates) < limit
	})

	return candidates, nil
}

// FetchBody retrieves the raw text of one paste.
func (s *Source) FetchBody(ctx context.Context, candidate domain.Candidate) ([]byte, error) {
	body, err := s.client.Get(ctx, s.baseURL+rawPathPrefix+candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch paste %s: %w", candidate.ID, err)
	}

	return body, nil
}

// pasteKeyFromHref extracts a paste key from an archive anchor href. Archive
// rows also link syntax pages ("/archive/python"), which are not keys.
func pasteKeyFromHref(href string) (string, bool) {
	key := strings.TrimPrefix(href, "/")
	if len(key) != pasteKeyLength || strings.Contains(key, "/") {
		return "", false
	}

	return key, true
}
