package table

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Categories of logical fields.
const (
	CategoryProgram = "program"
	CategoryCourse  = "course"
	CategoryLesson  = "lesson"
)

//go:embed columns.yaml
var defaultColumnsYAML []byte

// FieldType selects how raw cells of a logical field are coerced.
type FieldType uint8

const (
	FieldText FieldType = iota
	FieldBool
	FieldNumber
	FieldArray
)

// fieldTypes lists every logical field that is not plain text.
var fieldTypes = map[string]FieldType{
	"in_consumer_catalog": FieldBool,
	"in_ent_catalog":      FieldBool,

	"program_duration_hours":   FieldNumber,
	"course_duration_hours":    FieldNumber,
	"lesson_duration_hours":    FieldNumber,
	"total_active_enrollments": FieldNumber,

	"course_skills_array":         FieldArray,
	"course_skills_subject_array": FieldArray,
	"skill_domains":               FieldArray,
	"concept_titles":              FieldArray,
	"program_prereq_skills":       FieldArray,
	"course_prereq_skills":        FieldArray,
	"third_party_tools":           FieldArray,
	"software_requirements":       FieldArray,
	"hardware_requirements":       FieldArray,
	"gtm_array":                   FieldArray,
	"partners":                    FieldArray,
	"clients":                     FieldArray,
}

// TypeOf returns the coercion type of a logical field.
func TypeOf(logical string) FieldType {
	return fieldTypes[logical]
}

// columnNames accepts either a single header or a list of headers.
type columnNames []string

func (c *columnNames) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = columnNames{node.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*c = names
		return nil
	default:
		return fmt.Errorf("line %d: column must be a string or list of strings", node.Line)
	}
}

// ColumnMap maps category -> logical field -> physical column headers.
type ColumnMap struct {
	fields map[string]map[string]columnNames
}

// DefaultColumnMap returns the built-in mapping.
func DefaultColumnMap() *ColumnMap {
	cm, err := ParseColumnMap(defaultColumnsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded columns.yaml: %v", err))
	}
	return cm
}

// LoadColumnMap reads a mapping from a YAML file.
func LoadColumnMap(path string) (*ColumnMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidColumnMap, err)
	}
	return ParseColumnMap(data)
}

// ParseColumnMap decodes a YAML mapping.
func ParseColumnMap(data []byte) (*ColumnMap, error) {
	fields := make(map[string]map[string]columnNames)
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidColumnMap, err)
	}
	for category := range fields {
		switch category {
		case CategoryProgram, CategoryCourse, CategoryLesson:
		default:
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidColumnMap, category)
		}
	}
	return &ColumnMap{fields: fields}, nil
}

// Resolve returns the primary physical column for a logical field.
func (m *ColumnMap) Resolve(category, logical string) (string, bool) {
	names := m.Candidates(category, logical)
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Candidates returns every physical column configured for a logical field.
func (m *ColumnMap) Candidates(category, logical string) []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.fields[category][logical])
}

// each visits every (category, logical, headers) triple.
func (m *ColumnMap) each(fn func(category, logical string, names []string)) {
	for category, fields := range m.fields {
		for logical, names := range fields {
			fn(category, logical, names)
		}
	}
}
