package manifest

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Kind selects which document a schema applies to.
type Kind string

const (
	KindLock     Kind = "lock"
	KindManifest Kind = "manifest"
)

// Requirement is one name/constraint pair of a require map.
type Requirement struct {
	Name       string
	Constraint string
}

// Requires is a require map in authored key order.
type Requires []Requirement

// UnmarshalYAML keeps the key order of the mapping. An empty sequence is
// accepted because PHP encodes empty maps as [].
func (r *Requires) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(Requires, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			var constraint string
			if v.Kind == yaml.ScalarNode {
				constraint = v.Value
			}
			out = append(out, Requirement{Name: k.Value, Constraint: constraint})
		}
		*r = out
		return nil
	case yaml.SequenceNode:
		if len(value.Content) == 0 {
			*r = nil
			return nil
		}
		return fmt.Errorf("line %d: require must be a map, got a list", value.Line)
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*r = nil
			return nil
		}
	}
	return fmt.Errorf("line %d: require must be a map", value.Line)
}

// Package is one package entry of the lock file, or the root manifest.
type Package struct {
	Name        string         `yaml:"name" json:"name"`
	Version     string         `yaml:"version,omitempty" json:"version,omitempty"`
	Type        string         `yaml:"type,omitempty" json:"type,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Require     Requires       `yaml:"require,omitempty" json:"-"`
	Extra       map[string]any `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// LockFile is the subset of the lock file the generator reads.
type LockFile struct {
	ContentHash string    `yaml:"content-hash" json:"content-hash"`
	Packages    []Package `yaml:"packages" json:"packages"`
	PackagesDev []Package `yaml:"packages-dev" json:"packages-dev"`
}
