package agent

import (
	"context"
	"fmt"
)

// synthesize produces the final answer. The merge call only happens when
// both strategies ran and produced answers; a single answer passes through
// verbatim to avoid a pointless completion call.
func (o *Orchestrator) synthesize(ctx context.Context, state *ConversationState, emit emitFunc) error {
	switch {
	case state.Route == RouteBoth && state.DocumentAnswer != "" && state.WebAnswer != "":
		system := fmt.Sprintf(synthesizerSystem, state.DocumentAnswer, state.WebAnswer)
		merged, err := o.generate(ctx, StepSynthesize, system, state, emit)
		if err != nil {
			return err
		}
		state.FinalAnswer = merged

	case state.DocumentAnswer != "":
		state.FinalAnswer = state.DocumentAnswer

	case state.WebAnswer != "":
		state.FinalAnswer = state.WebAnswer

	default:
		state.FinalAnswer = MsgFallback
	}

	o.logger.Info("Synthesizer", "Response synthesized", map[string]interface{}{
		"thread_id": state.ThreadID,
		"route":     state.Route.String(),
	})
	return nil
}
