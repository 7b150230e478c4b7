// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"fmt"
	"math"

	"github.com/poiesic/ragbot/core"
)

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
// A zero-magnitude vector scores 0. Vectors of differing length fail with
// core.ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", core.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

// BestMatch scans records for the highest cosine similarity to query.
// Ties keep the earliest record. Returns nil when records is empty.
func BestMatch(query []float32, records []core.Record) (*core.Match, error) {
	var best *core.Match
	for i, record := range records {
		score, err := CosineSimilarity(query, record.Embedding)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if best == nil || score > best.Score {
			best = &core.Match{Text: record.Text, Score: score}
		}
	}
	return best, nil
}
