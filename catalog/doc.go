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


// Package catalog turns a lesson-level table into course and program
// entities.
//
// Aggregation runs in two passes. The first groups rows by
// (program key, course key) into CourseEntity values; the second groups rows
// by program key into ProgramEntity values whose skill union, skill domains
// and per-course skills are derived from the first pass. Scalars take the
// first non-null value in source row order and array fields are merged with
// first-seen deduplication.
//
// The skill vocabulary is the sorted set of every course's skill array and
// skill subject array.
//
// Example:
//
//	tbl, err := loader.Load("extract.tsv")
//	cat, err := catalog.Aggregate(tbl, catalog.WithLogger(logger))
//	p, ok := cat.Program("nd001")
//	vocab := cat.Vocabulary()
package catalog
