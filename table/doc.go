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


// Package table loads lesson-level program extracts into typed rows.
//
// Files may be UTF-16 (with BOM), UTF-8 or Latin-1, delimited by tabs or
// commas. Each cell is coerced according to the logical field its column
// maps to: catalog flags become booleans, durations and enrollment counts
// become numbers, and skill, tool and partner fields become deduplicated
// lists. Null tokens ("", "null", "nan" in any case) become null.
//
// The mapping from logical fields to physical headers lives in a YAML file
// grouped by category (program, course, lesson); columns.yaml is embedded as
// the default.
package table
