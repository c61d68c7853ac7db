package agent

import (
	"context"

	"travel-assistant-be/pkg/llm"
)

// classify assigns the turn's route with a single completion call. The
// classifier output is an internal routing label; it never streams and never
// reaches the client. Backend errors propagate to the turn boundary.
func (o *Orchestrator) classify(ctx context.Context, state *ConversationState) error {
	cctx, cancel := context.WithTimeout(ctx, o.cfg.ClassifyTimeout)
	defer cancel()

	// Deterministic output wanted here, so temperature 0 regardless of the
	// configured generation temperature.
	raw, err := o.llmProvider.Chat(cctx, []llm.Message{
		{Role: "system", Content: classifyIntentSystem},
		{Role: "user", Content: state.Query},
	}, llm.WithTemperature(0.0))
	if err != nil {
		return err
	}

	route, ok := ParseRoute(raw)
	if !ok {
		// Unrecognized labels silently resolve to FAQ (the cheaper, local-only
		// path), but the fallback is surfaced in diagnostics so it can be told
		// apart from a genuine FAQ classification.
		o.logger.Warn("Classifier", "Unrecognized route label, defaulting to FAQ", map[string]interface{}{
			"thread_id": state.ThreadID,
			"raw":       raw,
		})
		route = RouteFAQ
	}

	state.Route = route
	o.logger.Info("Classifier", "Intent classified", map[string]interface{}{
		"thread_id": state.ThreadID,
		"route":     route.String(),
	})
	return nil
}
