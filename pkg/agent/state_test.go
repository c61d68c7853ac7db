package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoute(t *testing.T) {
	cases := []struct {
		in   string
		want Route
		ok   bool
	}{
		{"FAQ", RouteFAQ, true},
		{"SEARCH", RouteSearch, true},
		{"BOTH", RouteBoth, true},
		{"  faq \n", RouteFAQ, true},
		{"Both", RouteBoth, true},
		{"FAQ, com certeza", RouteUnclassified, false},
		{"UNKNOWN", RouteUnclassified, false},
		{"", RouteUnclassified, false},
	}

	for _, c := range cases {
		got, ok := ParseRoute(c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
	}
}

func TestRouteLabels(t *testing.T) {
	assert.Equal(t, "faq", RouteFAQ.Label())
	assert.Equal(t, "search", RouteSearch.Label())
	assert.Equal(t, "both", RouteBoth.Label())
	assert.Equal(t, "unclassified", RouteUnclassified.Label())
}

func TestPreview(t *testing.T) {
	short := "texto curto"
	assert.Equal(t, short, Preview(short))

	// Multi-byte runes must not be cut mid-character.
	long := strings.Repeat("çã", ContentPreviewLimit)
	got := Preview(long)
	assert.Equal(t, ContentPreviewLimit, len([]rune(got)))
	assert.True(t, strings.HasPrefix(long, got))
}

func TestAddSourceTruncatesPreview(t *testing.T) {
	s := NewConversationState("t1", "q", nil)
	s.addSource(Source{Kind: SourceDocument, Title: "x", ContentPreview: strings.Repeat("a", 500)})

	assert.Len(t, s.Sources[0].ContentPreview, ContentPreviewLimit)
}
