// Package mock provides test doubles for the ai package interfaces.
//
// Mocks expose function fields for behavior injection and count calls:
//
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string, task ai.TaskType) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockCompleter: Echoes the prompt back prefixed with "answer: "
//   - MockProvider: Aggregates mock embedder and completer
package mock
