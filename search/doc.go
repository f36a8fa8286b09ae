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


// Package search ranks catalog programs against free-text queries.
//
// The Ranker builds a term set from the query, rewritten by intent
// extraction (role-based queries search for the role's skills) and the
// semantic resolver, then scores every program across additive evidence
// tiers:
//   - embedding-similar vocabulary skills found in the program
//   - query terms in the program's course skills
//   - query terms in course titles and summaries
//   - query terms in the program title and summary
//   - query terms in lesson and project titles
//
// Terms recognized as the learner's target are boosted and terms describing
// what they already know are damped, never subtracted. Programs with a zero
// score are dropped; the rest are ordered by a relevance in [0,1] that
// blends term coverage, normalized score and an embedding bonus.
package search
