// Package ingestion turns raw text into a trained vector store.
//
// The Trainer splits text into word-count chunks, embeds each chunk with the
// DOCUMENT task type one at a time in chunk order, and overwrites the store
// with every chunk that embedded successfully. Chunks that fail are skipped
// and reported in the returned Report rather than failing the run.
//
// Reembed runs the same loop over the texts already in the store, which
// refreshes every vector after the embedding model changes.
package ingestion
