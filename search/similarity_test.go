package search

import (
	"testing"

	"github.com/poiesic/ragbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"partial", []float32{1, 0}, []float32{1, 1}, 0.70710677},
		{"zero query", []float32{0, 0}, []float32{1, 0}, 0},
		{"zero record", []float32{1, 0}, []float32{0, 0}, 0},
		{"both empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, 1e-6)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.3, -0.2, 0.9}
	b := []float32{-0.1, 0.5, 0.4}

	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.True(t, ab >= -1 && ab <= 1)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestBestMatch_Empty(t *testing.T) {
	match, err := BestMatch([]float32{1, 0}, nil)
	require.NoError(t, err)
	assert.Nil(t, match)

	match, err = BestMatch([]float32{1, 0}, []core.Record{})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestBestMatch_PicksHighest(t *testing.T) {
	records := []core.Record{
		{Text: "c d", Embedding: []float32{0, 1}},
		{Text: "a b", Embedding: []float32{1, 0}},
		{Text: "mixed", Embedding: []float32{1, 1}},
	}

	match, err := BestMatch([]float32{1, 0}, records)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "a b", match.Text)
	assert.InDelta(t, 1.0, match.Score, 1e-6)
}

func TestBestMatch_TieKeepsFirst(t *testing.T) {
	records := []core.Record{
		{Text: "first", Embedding: []float32{1, 0}},
		{Text: "second", Embedding: []float32{2, 0}},
	}

	match, err := BestMatch([]float32{1, 0}, records)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "first", match.Text)
}

func TestBestMatch_AllZeroStillMatches(t *testing.T) {
	records := []core.Record{
		{Text: "zero", Embedding: []float32{0, 0}},
	}

	match, err := BestMatch([]float32{1, 0}, records)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "zero", match.Text)
	assert.Equal(t, float32(0), match.Score)
}

func TestBestMatch_NegativeScores(t *testing.T) {
	records := []core.Record{
		{Text: "far", Embedding: []float32{-1, 0}},
		{Text: "less far", Embedding: []float32{-1, 1}},
	}

	match, err := BestMatch([]float32{1, 0}, records)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "less far", match.Text)
	assert.Less(t, match.Score, float32(0))
}

func TestBestMatch_DimensionMismatch(t *testing.T) {
	records := []core.Record{
		{Text: "ok", Embedding: []float32{1, 0}},
		{Text: "bad", Embedding: []float32{1, 0, 0}},
	}

	match, err := BestMatch([]float32{1, 0}, records)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "record 1")
	assert.Nil(t, match)
}
