package agent

import (
	"strings"

	"travel-assistant-be/pkg/llm"
)

// Route is the intent category assigned to a query. It decides which
// answering strategy (or both) runs for the turn.
type Route int

const (
	RouteUnclassified Route = iota
	RouteFAQ
	RouteSearch
	RouteBoth
)

func (r Route) String() string {
	switch r {
	case RouteFAQ:
		return "FAQ"
	case RouteSearch:
		return "SEARCH"
	case RouteBoth:
		return "BOTH"
	default:
		return "UNCLASSIFIED"
	}
}

// Label returns the lowercase route name used on the API surface.
func (r Route) Label() string {
	return strings.ToLower(r.String())
}

// ParseRoute maps classifier output to a Route. Matching is exact after
// trimming and uppercasing; anything else reports ok=false.
func ParseRoute(s string) (Route, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FAQ":
		return RouteFAQ, true
	case "SEARCH":
		return RouteSearch, true
	case "BOTH":
		return RouteBoth, true
	default:
		return RouteUnclassified, false
	}
}

type SourceKind string

const (
	SourceDocument SourceKind = "document"
	SourceWeb      SourceKind = "web"
)

// Source is a citation record accumulated during a turn.
type Source struct {
	Kind           SourceKind `json:"type"`
	Title          string     `json:"title"`
	ContentPreview string     `json:"content_preview"`
	URL            *string    `json:"url"`
}

// ContentPreviewLimit bounds the excerpt stored on every Source.
const ContentPreviewLimit = 200

// Preview truncates content to the citation excerpt limit, rune-safe.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= ContentPreviewLimit {
		return content
	}
	return string(runes[:ContentPreviewLimit])
}

// ConversationState is the unit of work threaded through the state machine
// for one request. It is never shared across concurrent turns.
type ConversationState struct {
	ThreadID string
	Query    string
	Route    Route

	DocumentAnswer string
	WebAnswer      string
	FinalAnswer    string

	// Sources accumulates monotonically; strategies only append.
	Sources []Source

	// History holds prior turns, loaded from the thread store before the
	// state machine runs.
	History []llm.Message
}

// NewConversationState seeds a fresh state for one turn.
func NewConversationState(threadID, query string, history []llm.Message) *ConversationState {
	return &ConversationState{
		ThreadID: threadID,
		Query:    query,
		Route:    RouteUnclassified,
		History:  history,
	}
}

func (s *ConversationState) addSource(src Source) {
	src.ContentPreview = Preview(src.ContentPreview)
	s.Sources = append(s.Sources, src)
}
