package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"docqa/internal/models"
)

// rephrase resolves a context-dependent question into self-contained form
// using the recent history window. It always returns a usable question:
// a failed call or an unrecognized response falls back to the original.
func (e *Engine) rephrase(ctx context.Context, question, chatHistory string) string {
	prompt := fmt.Sprintf(models.RephrasePromptTemplate, chatHistory, question)

	out, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Error rephrasing question")
		return question
	}

	result := strings.TrimSpace(out)
	switch {
	case strings.HasPrefix(result, models.RephrasedPrefix):
		q := strings.TrimSpace(strings.TrimPrefix(result, models.RephrasedPrefix))
		if q == "" {
			return question
		}
		log.Debug().Str("question", q).Msg("Rephrased question")
		return q
	case strings.HasPrefix(result, models.UnchangedPrefix):
		q := strings.TrimSpace(strings.TrimPrefix(result, models.UnchangedPrefix))
		if q == "" {
			return question
		}
		return q
	default:
		log.Warn().Str("result", result).Msg("Unexpected rephrase format, keeping original question")
		return question
	}
}
