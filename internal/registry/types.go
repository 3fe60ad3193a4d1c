package registry

// RootName is the package name used for synthesized factory names when a
// package descriptor carries no name (typically the root project).
const RootName = "root"

// Requirement is one entry of a package's requires map. Constraint text is
// carried for display only and never interpreted.
type Requirement struct {
	Name       string
	Constraint string
}

// Package describes one installed package (or the root project).
type Package struct {
	Name     string
	Version  string
	Requires []Requirement  // authored order
	Extra    map[string]any // opaque, namespaced by framework key
	IsRoot   bool
	Dev      bool
}

// DisplayName returns the package name, or RootName when the name is empty.
func (p Package) DisplayName() string {
	if p.Name == "" {
		return RootName
	}
	return p.Name
}

// Record is the canonical form of a single module factory declaration.
type Record struct {
	Name        string
	Description string
	Module      string // code expression, emitted verbatim
	Priority    int
	Package     string // contributing package, not serialized
}

// Options selects where factory declarations live inside Package.Extra.
type Options struct {
	Namespace  string // e.g. "framework-interop"
	FactoryKey string // e.g. "module-factory"
}

// DefaultOptions returns the namespace and key used by framework-interop packages.
func DefaultOptions() Options {
	return Options{
		Namespace:  "framework-interop",
		FactoryKey: "module-factory",
	}
}

// Plan is the result of one generation run before anything is written.
type Plan struct {
	Packages []Package // dependency order
	Records  []Record  // priority order
}
