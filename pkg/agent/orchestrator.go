package agent

import (
	"context"
	"time"

	"travel-assistant-be/internal/pkg/logger"
	"travel-assistant-be/pkg/llm"
)

// Phase identifies where the state machine is within one turn.
type Phase string

const (
	PhaseClassifying         Phase = "CLASSIFYING"
	PhaseAnsweringFAQ        Phase = "ANSWERING_FAQ"
	PhaseAnsweringSearch     Phase = "ANSWERING_SEARCH"
	PhaseAnsweringBothFAQ    Phase = "ANSWERING_BOTH_FAQ"
	PhaseAnsweringBothSearch Phase = "ANSWERING_BOTH_SEARCH"
	PhaseSynthesizing        Phase = "SYNTHESIZING"
	PhaseDone                Phase = "DONE"
)

// Step names tag streamed fragments with their origin so consumers can tell
// strategy output apart. Classifier fragments are never streamed at all.
const (
	StepClassify   = "classify_intent"
	StepFAQ        = "faq_agent"
	StepSearch     = "search_agent"
	StepSynthesize = "synthesize_response"
)

// Passage is one retrieved chunk of the policy corpus.
type Passage struct {
	Text    string
	Page    int
	Section string
}

// CorpusIndex retrieves relevant passages for a query. Implementations are
// expected to apply diversity-aware (MMR) selection.
type CorpusIndex interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// SearchResult is one hit from the live web search provider.
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// WebSearcher performs a live web search bounded to maxResults hits.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// EventType discriminates stream events.
type EventType string

const (
	EventToken EventType = "token"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is one element of the streaming run's lazy event sequence. Token
// events carry the originating step; the terminal Done event carries the
// completed state.
type Event struct {
	Type  EventType
	Step  string
	Token string
	State *ConversationState
	Err   error
}

// Runner is the orchestration contract consumed by the transport layer.
type Runner interface {
	Run(ctx context.Context, state *ConversationState) error
	RunStream(ctx context.Context, state *ConversationState) <-chan Event
}

// Config encapsulates orchestration parameters. Each external call gets its
// own timeout so one slow collaborator cannot absorb the whole budget.
type Config struct {
	TopK             int
	MaxSearchResults int
	Temperature      float64
	HistoryWindow    int

	ClassifyTimeout time.Duration
	RetrieveTimeout time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// DefaultConfig returns default orchestration configuration
func DefaultConfig() Config {
	return Config{
		TopK:             5,
		MaxSearchResults: 5,
		Temperature:      0.1,
		HistoryWindow:    6,
		ClassifyTimeout:  15 * time.Second,
		RetrieveTimeout:  10 * time.Second,
		SearchTimeout:    20 * time.Second,
		GenerateTimeout:  120 * time.Second,
	}
}

type emitFunc func(step, token string)

// Orchestrator sequences Classifier → strategies → Synthesizer over a
// ConversationState. It holds no per-request state of its own, so one
// instance serves concurrent turns of different threads.
type Orchestrator struct {
	llmProvider llm.LLMProvider
	index       CorpusIndex // nil when the knowledge base is not loaded
	searcher    WebSearcher
	logger      logger.ILogger
	cfg         Config

	// OnTransition, when set, observes every phase change. Used for
	// diagnostics and in tests to assert the transition sequence.
	OnTransition func(from, to Phase)
}

var _ Runner = (*Orchestrator)(nil)

// NewOrchestrator creates the orchestration state machine. index may be nil
// when no corpus has been loaded; the document strategy degrades gracefully.
func NewOrchestrator(
	llmProvider llm.LLMProvider,
	index CorpusIndex,
	searcher WebSearcher,
	log logger.ILogger,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		llmProvider: llmProvider,
		index:       index,
		searcher:    searcher,
		logger:      log,
		cfg:         cfg,
	}
}

// Run drives the state machine to DONE, mutating state in place. Errors from
// classification or generation propagate; degraded strategies do not fail.
func (o *Orchestrator) Run(ctx context.Context, state *ConversationState) error {
	phase := PhaseClassifying
	for phase != PhaseDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := o.step(ctx, state, phase, nil)
		if err != nil {
			return err
		}
		o.transition(phase, next)
		phase = next
	}
	return nil
}

// RunStream drives the state machine while surfacing every token produced by
// strategy and synthesizer generation calls. The returned sequence is lazy,
// finite and non-restartable: token events, then exactly one Done (or Error)
// event, then the channel closes. Cancelling ctx stops the run promptly.
func (o *Orchestrator) RunStream(ctx context.Context, state *ConversationState) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		send := func(ev Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		emit := func(step, token string) {
			send(Event{Type: EventToken, Step: step, Token: token})
		}

		phase := PhaseClassifying
		for phase != PhaseDone {
			if err := ctx.Err(); err != nil {
				send(Event{Type: EventError, Err: err})
				return
			}
			next, err := o.step(ctx, state, phase, emit)
			if err != nil {
				send(Event{Type: EventError, Err: err})
				return
			}
			o.transition(phase, next)
			phase = next
		}

		send(Event{Type: EventDone, State: state})
	}()

	return out
}

// step executes the work of one phase and returns the next phase per the
// transition table. Route is written exactly once, during CLASSIFYING.
func (o *Orchestrator) step(ctx context.Context, state *ConversationState, phase Phase, emit emitFunc) (Phase, error) {
	switch phase {
	case PhaseClassifying:
		if err := o.classify(ctx, state); err != nil {
			return phase, err
		}
		switch state.Route {
		case RouteSearch:
			return PhaseAnsweringSearch, nil
		case RouteBoth:
			return PhaseAnsweringBothFAQ, nil
		default:
			return PhaseAnsweringFAQ, nil
		}

	case PhaseAnsweringFAQ:
		return PhaseSynthesizing, o.answerFromCorpus(ctx, state, emit)

	case PhaseAnsweringBothFAQ:
		return PhaseAnsweringBothSearch, o.answerFromCorpus(ctx, state, emit)

	case PhaseAnsweringSearch, PhaseAnsweringBothSearch:
		return PhaseSynthesizing, o.answerFromWeb(ctx, state, emit)

	case PhaseSynthesizing:
		return PhaseDone, o.synthesize(ctx, state, emit)

	default:
		return PhaseDone, nil
	}
}

func (o *Orchestrator) transition(from, to Phase) {
	if o.OnTransition != nil {
		o.OnTransition(from, to)
	}
}

// generate issues one completion call with system instructions, a window of
// prior turns, and the raw query as a separate user message. When emit is
// non-nil the call streams and every fragment is tagged with step.
func (o *Orchestrator) generate(ctx context.Context, step, system string, state *ConversationState, emit emitFunc) (string, error) {
	messages := make([]llm.Message, 0, o.cfg.HistoryWindow+2)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, historyTail(state.History, o.cfg.HistoryWindow)...)
	messages = append(messages, llm.Message{Role: "user", Content: state.Query})

	gctx, cancel := context.WithTimeout(ctx, o.cfg.GenerateTimeout)
	defer cancel()

	if emit == nil {
		return o.llmProvider.Chat(gctx, messages, llm.WithTemperature(o.cfg.Temperature))
	}
	return o.llmProvider.ChatStream(gctx, messages, func(token string) {
		emit(step, token)
	}, llm.WithTemperature(o.cfg.Temperature))
}

func historyTail(history []llm.Message, window int) []llm.Message {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}
