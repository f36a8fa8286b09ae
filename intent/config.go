package intent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/roles.yaml
var defaultRolesYAML []byte

// Role maps a job title to the skills it implies.
type Role struct {
	Name   string   `yaml:"name"`
	Skills []string `yaml:"skills"`
}

// Dictionary is the static vocabulary the extractor works from. It is
// never modified after loading.
type Dictionary struct {
	Roles           []Role   `yaml:"roles"`
	IntentStopWords []string `yaml:"intent_stop_words"`
	QueryStopWords  []string `yaml:"query_stop_words"`
}

var defaultDictionary = sync.OnceValue(func() *Dictionary {
	d, err := ParseDictionary(defaultRolesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded roles.yaml: %v", err))
	}
	return d
})

// DefaultDictionary returns the built-in role dictionary and stop words.
func DefaultDictionary() *Dictionary {
	return defaultDictionary()
}

// LoadDictionary reads a role dictionary from a YAML file.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoles, err)
	}
	return ParseDictionary(data)
}

// ParseDictionary decodes a role dictionary. Role names are lower-cased.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoles, err)
	}
	for i := range d.Roles {
		name := strings.ToLower(strings.TrimSpace(d.Roles[i].Name))
		if name == "" {
			return nil, fmt.Errorf("%w: role %d has no name", ErrInvalidRoles, i)
		}
		d.Roles[i].Name = name
	}
	return &d, nil
}

// Skills returns the skills mapped to role, or nil.
func (d *Dictionary) Skills(role string) []string {
	for _, r := range d.Roles {
		if r.Name == role {
			return r.Skills
		}
	}
	return nil
}
