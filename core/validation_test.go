package core

import (
	"errors"
	"testing"
)

func TestValidateCourse(t *testing.T) {
	tests := []struct {
		name    string
		course  *CourseEntity
		wantErr error
	}{
		{
			name: "valid course",
			course: &CourseEntity{
				ProgramKey:    "nd001",
				CourseKey:     "c1",
				SkillsArray:   []string{"SQL", "Python"},
				ProjectTitles: []string{"Capstone"},
				HandsOn:       true,
			},
			wantErr: nil,
		},
		{
			name: "valid course without projects",
			course: &CourseEntity{
				ProgramKey: "nd001",
				CourseKey:  "c1",
			},
			wantErr: nil,
		},
		{
			name:    "nil course",
			course:  nil,
			wantErr: ErrInvalidCourse,
		},
		{
			name: "empty course key",
			course: &CourseEntity{
				ProgramKey: "nd001",
			},
			wantErr: ErrEmptyKey,
		},
		{
			name: "duplicate skill",
			course: &CourseEntity{
				ProgramKey:  "nd001",
				CourseKey:   "c1",
				SkillsArray: []string{"SQL", "SQL"},
			},
			wantErr: ErrDuplicateValue,
		},
		{
			name: "hands on without projects",
			course: &CourseEntity{
				ProgramKey: "nd001",
				CourseKey:  "c1",
				HandsOn:    true,
			},
			wantErr: ErrInvalidCourse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCourse(tt.course)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCourse() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateCourse() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCourse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProgram(t *testing.T) {
	course := &CourseEntity{
		ProgramKey:         "nd001",
		CourseKey:          "c1",
		SkillsArray:        []string{"SQL"},
		SkillsSubjectArray: []string{"Databases"},
	}

	tests := []struct {
		name    string
		program *ProgramEntity
		wantErr error
	}{
		{
			name: "valid program",
			program: &ProgramEntity{
				ProgramKey:  "nd001",
				Courses:     []string{"c1"},
				SkillsUnion: []string{"SQL", "Databases"},
			},
			wantErr: nil,
		},
		{
			name:    "nil program",
			program: nil,
			wantErr: ErrInvalidProgram,
		},
		{
			name:    "empty key",
			program: &ProgramEntity{},
			wantErr: ErrEmptyKey,
		},
		{
			name: "duplicate course",
			program: &ProgramEntity{
				ProgramKey:  "nd001",
				Courses:     []string{"c1", "c1"},
				SkillsUnion: []string{"SQL", "Databases"},
			},
			wantErr: ErrDuplicateValue,
		},
		{
			name: "union missing course skill",
			program: &ProgramEntity{
				ProgramKey:  "nd001",
				Courses:     []string{"c1"},
				SkillsUnion: []string{"SQL"},
			},
			wantErr: ErrSkillsNotCovered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProgram(tt.program, course)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateProgram() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProgram() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
