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


// Package chunk splits source text into fixed word-count segments.
package chunk

import (
	"errors"
	"strings"
)

// DefaultSize is the number of words per chunk when none is configured.
const DefaultSize = 1000

// ErrInvalidSize indicates a chunk size below one word.
var ErrInvalidSize = errors.New("chunk size must be at least 1")

// Split breaks text into chunks of size whitespace-delimited words.
// Words are rejoined with single spaces. Every chunk except the last has
// exactly size words; the last holds the remainder. Empty or
// whitespace-only text yields no chunks.
func Split(text string, size int) ([]string, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}, nil
	}

	chunks := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks, nil
}
