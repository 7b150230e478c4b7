package ingestion

// ChunkResult is the outcome of embedding one chunk.
type ChunkResult struct {
	// Index is the chunk's position in the source text, starting at 0.
	Index int
	// Text is the chunk itself.
	Text string
	// Err is nil when the chunk was embedded and stored.
	Err error
}

// OK reports whether the chunk made it into the store.
func (r ChunkResult) OK() bool {
	return r.Err == nil
}

// Report summarises a training run.
type Report struct {
	// Results holds one entry per chunk, in chunk order.
	Results []ChunkResult
	// Records is the number of records written to the store.
	Records int
	// Skipped is the number of chunks whose embedding failed.
	Skipped int
}

// Empty reports whether the run stored nothing.
func (r *Report) Empty() bool {
	return r.Records == 0
}

// Failures returns the results of skipped chunks.
func (r *Report) Failures() []ChunkResult {
	failures := make([]ChunkResult, 0, r.Skipped)
	for _, result := range r.Results {
		if !result.OK() {
			failures = append(failures, result)
		}
	}
	return failures
}
