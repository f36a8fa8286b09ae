package semantic

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed data/aliases.yaml
	defaultAliasesYAML []byte

	//go:embed data/taxonomy.yaml
	defaultTaxonomyYAML []byte
)

// AliasSet lists the surface forms of one canonical skill.
type AliasSet struct {
	Canonical string
	Aliases   []string
}

// Intent is a taxonomy entry that disambiguates how a canonical skill is meant.
type Intent struct {
	Key             string   `yaml:"-"`
	CanonicalSkill  string   `yaml:"canonical_skill"`
	Label           string   `yaml:"intent_label"`
	ContextSignals  []string `yaml:"context_signals"`
	AvoidSignals    []string `yaml:"avoid_signals"`
	PreferredSkills []string `yaml:"preferred_skills"`
}

var (
	defaultAliases = sync.OnceValue(func() []AliasSet {
		sets, err := ParseAliases(defaultAliasesYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded aliases.yaml: %v", err))
		}
		return sets
	})
	defaultTaxonomy = sync.OnceValue(func() []Intent {
		intents, err := ParseTaxonomy(defaultTaxonomyYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded taxonomy.yaml: %v", err))
		}
		return intents
	})
)

// DefaultAliases returns the built-in alias table.
func DefaultAliases() []AliasSet {
	return defaultAliases()
}

// DefaultTaxonomy returns the built-in intent taxonomy.
func DefaultTaxonomy() []Intent {
	return defaultTaxonomy()
}

// LoadAliases reads an alias table from a YAML file.
func LoadAliases(path string) ([]AliasSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes a canonical -> [aliases] mapping, keeping file order.
func ParseAliases(data []byte) ([]AliasSet, error) {
	var sets []AliasSet
	err := eachEntry(data, func(key string, value *yaml.Node) error {
		var aliases []string
		if err := value.Decode(&aliases); err != nil {
			return err
		}
		sets = append(sets, AliasSet{Canonical: key, Aliases: aliases})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}

// LoadTaxonomy reads an intent taxonomy from a YAML file.
func LoadTaxonomy(path string) ([]Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes an intent key -> entry mapping, keeping file order.
func ParseTaxonomy(data []byte) ([]Intent, error) {
	var intents []Intent
	err := eachEntry(data, func(key string, value *yaml.Node) error {
		var in Intent
		if err := value.Decode(&in); err != nil {
			return err
		}
		if in.CanonicalSkill == "" {
			return fmt.Errorf("intent %q has no canonical_skill", key)
		}
		in.Key = key
		if in.Label == "" {
			in.Label = key
		}
		intents = append(intents, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return intents, nil
}

// eachEntry walks a top-level YAML mapping in document order.
func eachEntry(data []byte, fn func(key string, value *yaml.Node) error) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidConfig, root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if err := fn(key.Value, value); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrInvalidConfig, key.Line, err)
		}
	}
	return nil
}
