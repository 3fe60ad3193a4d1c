package registry

import "fmt"

// Aggregate collects the factory records of every package, in package order
// and then declaration order. Packages without a declaration contribute
// nothing.
func Aggregate(ordered []Package, opts Options) []Record {
	return aggregate(ordered, opts, nil)
}

func aggregate(ordered []Package, opts Options, warn func(pkg, msg string)) []Record {
	var records []Record
	for _, pkg := range ordered {
		decl := Classify(lookupDeclaration(pkg, opts))
		if warn != nil {
			for _, w := range decl.Warnings {
				warn(pkg.DisplayName(), w)
			}
		}
		records = append(records, normalize(pkg, decl)...)
	}
	return records
}

// lookupDeclaration returns Extra[namespace][factoryKey], or nil.
func lookupDeclaration(pkg Package, opts Options) any {
	ns, ok := toStringMap(pkg.Extra[opts.Namespace])
	if !ok {
		return nil
	}
	return ns[opts.FactoryKey]
}

// normalize applies defaults to every entry of a classified declaration.
func normalize(pkg Package, decl Declaration) []Record {
	if len(decl.Entries) == 0 {
		return nil
	}

	pkgName := pkg.DisplayName()
	records := make([]Record, 0, len(decl.Entries))
	for i, e := range decl.Entries {
		r := Record{
			Name:        fmt.Sprintf("%s_%d", pkgName, i),
			Description: defaultDescription(pkgName, i, len(decl.Entries)),
			Module:      e.Module,
			Package:     pkgName,
		}
		if e.Name != nil {
			r.Name = *e.Name
		}
		if e.Description != nil {
			r.Description = *e.Description
		}
		if e.Priority != nil {
			r.Priority = *e.Priority
		}
		records = append(records, r)
	}
	return records
}

func defaultDescription(pkgName string, index, count int) string {
	if count == 1 {
		return "Module for package " + pkgName
	}
	return fmt.Sprintf("Module number %d for package %s", index, pkgName)
}
