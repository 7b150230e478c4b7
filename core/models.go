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


package core

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Record pairs a chunk of source text with its embedding vector.
// A slice of records is the unit persisted by a vector store.
type Record struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Dimensions returns the length of the record's embedding.
func (r Record) Dimensions() int {
	return len(r.Embedding)
}

// Match is the best-scoring record for a query embedding.
type Match struct {
	Text  string
	Score float32
}

// ContentKey derives a deterministic hex key from the given parts using BLAKE2b.
// Parts are separated by a NUL byte so ("ab", "c") and ("a", "bc") differ.
func ContentKey(parts ...string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
