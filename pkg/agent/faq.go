package agent

import (
	"context"
	"fmt"
	"strings"
)

// answerFromCorpus runs the document-grounded strategy. A missing or failing
// corpus index is a degraded mode, not a failure: the turn continues with a
// fixed apology and zero appended sources. Generation errors propagate.
func (o *Orchestrator) answerFromCorpus(ctx context.Context, state *ConversationState, emit emitFunc) error {
	if o.index == nil {
		o.logger.Warn("FAQAgent", "Knowledge base not available", map[string]interface{}{
			"thread_id": state.ThreadID,
		})
		state.DocumentAnswer = MsgKnowledgeBaseUnavailable
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, o.cfg.RetrieveTimeout)
	passages, err := o.index.Retrieve(rctx, state.Query, o.cfg.TopK)
	cancel()
	if err != nil {
		o.logger.Warn("FAQAgent", "Retrieval failed, degrading", map[string]interface{}{
			"thread_id": state.ThreadID,
			"error":     err.Error(),
		})
		state.DocumentAnswer = MsgKnowledgeBaseUnavailable
		return nil
	}

	contextParts := make([]string, 0, len(passages))
	for _, p := range passages {
		label := fmt.Sprintf("[Página %d]", p.Page)
		title := fmt.Sprintf("Manual de Políticas - Página %d", p.Page)
		if p.Section != "" {
			label = fmt.Sprintf("[%s - Página %d]", p.Section, p.Page)
			title = fmt.Sprintf("Manual de Políticas - Página %d (%s)", p.Page, p.Section)
		}
		contextParts = append(contextParts, label+"\n"+p.Text)
		state.addSource(Source{
			Kind:           SourceDocument,
			Title:          title,
			ContentPreview: p.Text,
		})
	}

	grounding := markerNoDocuments
	if len(contextParts) > 0 {
		grounding = strings.Join(contextParts, contextDelimiter)
	}

	answer, err := o.generate(ctx, StepFAQ, fmt.Sprintf(faqAgentSystem, grounding), state, emit)
	if err != nil {
		return err
	}

	state.DocumentAnswer = answer
	o.logger.Info("FAQAgent", "Document strategy completed", map[string]interface{}{
		"thread_id":  state.ThreadID,
		"docs_found": len(passages),
	})
	return nil
}
