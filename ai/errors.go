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


package ai

import (
	"errors"

	"github.com/poiesic/ragbot/core"
)

var (
	// ErrInvalidConfig prefixes every configuration validation failure.
	ErrInvalidConfig = errors.New("ai config")

	// ErrInvalidMaxAttempts indicates maxAttempts is <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// IsRateLimited reports whether err is a rate-limit failure from an embedding provider.
func IsRateLimited(err error) bool {
	return errors.Is(err, core.ErrEmbeddingRateLimited)
}
