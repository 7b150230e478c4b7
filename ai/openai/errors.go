package openai

import (
	"fmt"

	"github.com/poiesic/ragbot/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// classifyEmbeddingError maps a client error onto the pipeline taxonomy.
// Only rate limiting is distinguished; the cause stays in the chain.
func classifyEmbeddingError(err error) error {
	if llms.IsRateLimitError(openai.MapError(err)) {
		return fmt.Errorf("%w: %w", core.ErrEmbeddingRateLimited, err)
	}
	return fmt.Errorf("%w: %w", core.ErrEmbeddingFailed, err)
}

func classifyCompletionError(err error) error {
	return fmt.Errorf("%w: %w", core.ErrCompletionFailed, openai.MapError(err))
}
