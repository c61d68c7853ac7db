package agent

import (
	"context"
	"fmt"
	"strings"
)

// answerFromWeb runs the web-grounded strategy. Provider errors (timeout,
// quota, transport) are caught here and degrade to a fixed apology with no
// appended sources. Generation errors propagate.
func (o *Orchestrator) answerFromWeb(ctx context.Context, state *ConversationState, emit emitFunc) error {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.SearchTimeout)
	results, err := o.searcher.Search(sctx, state.Query, o.cfg.MaxSearchResults)
	cancel()
	if err != nil {
		o.logger.Warn("SearchAgent", "Web search failed, degrading", map[string]interface{}{
			"thread_id": state.ThreadID,
			"error":     err.Error(),
		})
		state.WebAnswer = MsgWebSearchUnavailable
		return nil
	}

	searchParts := make([]string, 0, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "Sem título"
		}
		searchParts = append(searchParts, fmt.Sprintf("**%s**\n%s\nFonte: %s", title, r.Content, r.URL))

		url := r.URL
		state.addSource(Source{
			Kind:           SourceWeb,
			Title:          title,
			ContentPreview: r.Content,
			URL:            &url,
		})
	}

	grounding := markerNoResults
	if len(searchParts) > 0 {
		grounding = strings.Join(searchParts, contextDelimiter)
	}

	answer, err := o.generate(ctx, StepSearch, fmt.Sprintf(searchAgentSystem, grounding), state, emit)
	if err != nil {
		return err
	}

	state.WebAnswer = answer
	o.logger.Info("SearchAgent", "Web strategy completed", map[string]interface{}{
		"thread_id":     state.ThreadID,
		"results_found": len(results),
	})
	return nil
}
