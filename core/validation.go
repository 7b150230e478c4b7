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

import "fmt"

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Embedding must not be empty
//
// Embedding dimensionality is not checked here; see ValidateRecords.
func ValidateRecord(record Record) error {
	if record.Text == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidRecord)
	}
	if len(record.Embedding) == 0 {
		return fmt.Errorf("%w: embedding is empty", ErrInvalidRecord)
	}
	return nil
}

// ValidateRecords validates every record and checks that all embeddings
// share the dimensionality of the first one.
func ValidateRecords(records []Record) error {
	dims := 0
	for i, record := range records {
		if err := ValidateRecord(record); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if i == 0 {
			dims = record.Dimensions()
			continue
		}
		if record.Dimensions() != dims {
			return fmt.Errorf("record %d: %w: got %d, want %d", i, ErrDimensionMismatch, record.Dimensions(), dims)
		}
	}
	return nil
}
