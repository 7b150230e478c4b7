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

// TaskType tells the embedding provider whether text is being indexed or searched with.
// Document and query embeddings of the same content need not be identical.
type TaskType int

const (
	// TaskTypeDocument marks text that will be stored and searched against.
	TaskTypeDocument TaskType = iota + 1
	// TaskTypeQuery marks text used to search the store.
	TaskTypeQuery
)

func (t TaskType) String() string {
	switch t {
	case TaskTypeDocument:
		return "RETRIEVAL_DOCUMENT"
	case TaskTypeQuery:
		return "RETRIEVAL_QUERY"
	default:
		return "UNSPECIFIED"
	}
}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	return t == TaskTypeDocument || t == TaskTypeQuery
}
