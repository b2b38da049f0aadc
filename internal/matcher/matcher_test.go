package matcher_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/matcher"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		keywords     []string
		urlPatterns  []string
		wantErr      bool
		wantKeywords int
		wantPatterns int
	}{
		{
			name:         "keywords and patterns",
			keywords:     []string{"bitcoin", "t.me"},
			urlPatterns:  []string{matcher.OnionURLPattern},
			wantKeywords: 2,
			wantPatterns: 1,
		},
		{
			name:         "duplicate and empty keywords dropped",
			keywords:     []string{"BTC", "btc", "", "  "},
			wantKeywords: 1,
		},
		{
			name:         "blank patterns dropped",
			urlPatterns:  []string{"", "   "},
			wantPatterns: 0,
		},
		{
			name:        "invalid pattern",
			urlPatterns: []string{"(unclosed"},
			wantErr:     true,
		},
		{
			name: "no criteria",
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			m, err := matcher.New(test.keywords, test.urlPatterns)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.wantKeywords, m.KeywordCount())
			require.Equal(t, test.wantPatterns, m.PatternCount())
		})
	}
}

func TestMatcher_MatchKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		keywords []string
		text     string
		want     []string
	}{
		{
			name:     "case insensitive with dotted keyword",
			keywords: []string{"bitcoin", "t.me"},
			text:     "Join our crypto group at t.me/group123 for BITCOIN tips",
			want:     []string{"bitcoin", "t.me"},
		},
		{
			name:     "configuration order preserved over text order",
			keywords: []string{"wallet", "btc"},
			text:     "btc wallet drained",
			want:     []string{"wallet", "btc"},
		},
		{
			name:     "substring match inside larger word",
			keywords: []string{"eth", "ethereum"},
			text:     "ethereum rally continues",
			want:     []string{"eth", "ethereum"},
		},
		{
			name:     "each keyword reported once",
			keywords: []string{"btc"},
			text:     "btc btc btc",
			want:     []string{"btc"},
		},
		{
			name:     "punctuation around keyword",
			keywords: []string{"bitcoin"},
			text:     "sell (Bitcoin!) now",
			want:     []string{"bitcoin"},
		},
		{
			name:     "no hits",
			keywords: []string{"monero"},
			text:     "nothing to see here",
			want:     nil,
		},
		{
			name:     "empty text",
			keywords: []string{"bitcoin"},
			text:     "",
			want:     nil,
		},
		{
			name: "no keywords configured",
			text: "bitcoin everywhere",
			want: nil,
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			m, err := matcher.New(test.keywords, nil)
			require.NoError(t, err)
			require.Equal(t, test.want, m.MatchKeywords(test.text))
		})
	}
}

func TestMatcher_ExtractURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []string
		text     string
		want     []string
	}{
		{
			name:     "scheme kept with path and query",
			patterns: []string{matcher.OnionURLPattern},
			text:     "visit http://abc123xyz.onion/page?x=1 now",
			want:     []string{"http://abc123xyz.onion/page?x=1"},
		},
		{
			name:     "missing scheme gets default",
			patterns: []string{matcher.OnionURLPattern},
			text:     "mirror at abc123xyz.onion/home",
			want:     []string{"http://abc123xyz.onion/home"},
		},
		{
			name:     "schemeless and schemed duplicates collapse",
			patterns: []string{matcher.OnionURLPattern},
			text:     "see abc.onion/x and http://abc.onion/x",
			want:     []string{"http://abc.onion/x"},
		},
		{
			name:     "https preserved",
			patterns: []string{matcher.OnionURLPattern},
			text:     "secure https://hidden.onion/login",
			want:     []string{"https://hidden.onion/login"},
		},
		{
			name:     "multiple distinct urls keep first-occurrence order",
			patterns: []string{matcher.OnionURLPattern},
			text:     "first b.onion then a.onion",
			want:     []string{"http://b.onion", "http://a.onion"},
		},
		{
			name:     "no patterns configured",
			patterns: nil,
			text:     "abc.onion",
			want:     nil,
		},
		{
			name:     "empty text",
			patterns: []string{matcher.OnionURLPattern},
			text:     "",
			want:     nil,
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			m, err := matcher.New(nil, test.patterns)
			require.NoError(t, err)
			require.Equal(t, test.want, m.ExtractURLs(test.text))
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	t.Parallel()

	m, err := matcher.New([]string{"bitcoin", "t.me"}, []string{matcher.OnionURLPattern})
	require.NoError(t, err)

	result := m.Match("BITCOIN drop at t.me/group and xyz.onion/shop")
	require.Equal(t, []string{"bitcoin", "t.me"}, result.Keywords)
	require.Equal(t, []string{"http://xyz.onion/shop"}, result.URLs)
	require.False(t, result.Empty())

	empty := m.Match("")
	require.Empty(t, empty.Keywords)
	require.Empty(t, empty.URLs)
	require.True(t, empty.Empty())
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare host", raw: "abc.onion", want: "http://abc.onion"},
		{name: "http kept", raw: "http://abc.onion", want: "http://abc.onion"},
		{name: "https kept", raw: "https://abc.onion", want: "https://abc.onion"},
		{name: "surrounding space trimmed", raw: "  abc.onion ", want: "http://abc.onion"},
		{name: "empty", raw: "", want: ""},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, test.want, matcher.NormalizeURL(test.raw))
		})
	}
}
