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

import "errors"

// Degradation errors. None of these abort engine construction; they are
// logged and the affected field or tier falls back to empty.
var (
	// ErrMissingColumn indicates a required logical column is absent from the source.
	ErrMissingColumn = errors.New("missing column")

	// ErrBackendUnavailable indicates an optional backend is missing or misconfigured.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrMalformedArrayField indicates a value that is neither a list nor a delimited string.
	ErrMalformedArrayField = errors.New("malformed array field")
)

// Entity validation errors
var (
	// ErrInvalidProgram indicates a ProgramEntity failed validation.
	ErrInvalidProgram = errors.New("invalid program")

	// ErrInvalidCourse indicates a CourseEntity failed validation.
	ErrInvalidCourse = errors.New("invalid course")

	// ErrEmptyKey indicates a required entity key is empty.
	ErrEmptyKey = errors.New("key cannot be empty")

	// ErrDuplicateValue indicates an array field contains a repeated element.
	ErrDuplicateValue = errors.New("array field contains duplicates")

	// ErrSkillsNotCovered indicates the program skill union misses a course skill.
	ErrSkillsNotCovered = errors.New("skills union does not cover course skills")
)
