package registry

import (
	"slices"
	"strings"
)

// Order returns packages sorted so that every package comes after the
// packages it requires. Packages are first sorted by name, which makes the
// result independent of the input order and fixes the order of unrelated
// packages. Requirements that name no installed package are ignored.
//
// Cycles do not fail: a package is taken out of the remaining set before its
// requirements are walked, so an edge pointing back at a package still being
// visited is skipped. For A requiring B and B requiring A the result is [B, A].
//
// Packages sharing a name appear once, first occurrence in name order wins.
func Order(packages []Package) []Package {
	return newOrderer(packages, nil).run()
}

// orderer holds the traversal state for one Order call.
type orderer struct {
	sorted    []Package
	remaining []bool           // indexed like sorted
	byName    map[string][]int // name -> indexes into sorted
	placed    map[string]bool
	out       []Package

	// onBackEdge is called for a requirement skipped because its target is
	// still being visited.
	onBackEdge func(from, to string)
}

func newOrderer(packages []Package, onBackEdge func(from, to string)) *orderer {
	sorted := slices.Clone(packages)
	slices.SortStableFunc(sorted, func(a, b Package) int {
		return strings.Compare(a.Name, b.Name)
	})

	o := &orderer{
		sorted:     sorted,
		remaining:  make([]bool, len(sorted)),
		byName:     make(map[string][]int, len(sorted)),
		placed:     make(map[string]bool, len(sorted)),
		out:        make([]Package, 0, len(sorted)),
		onBackEdge: onBackEdge,
	}
	for i, p := range sorted {
		o.remaining[i] = true
		o.byName[p.Name] = append(o.byName[p.Name], i)
	}
	return o
}

func (o *orderer) run() []Package {
	for i := range o.sorted {
		if !o.placed[o.sorted[i].Name] {
			o.visit(i)
		}
	}
	return o.out
}

func (o *orderer) visit(i int) {
	p := o.sorted[i]
	if o.placed[p.Name] {
		return
	}

	// Taking the package out before walking its requirements is what breaks
	// cycles. Duplicates of the same name leave together.
	for _, j := range o.byName[p.Name] {
		o.remaining[j] = false
	}

	for _, req := range p.Requires {
		if j, ok := o.findRemaining(req.Name); ok {
			o.visit(j)
			continue
		}
		if o.onBackEdge != nil && o.inProgress(req.Name) {
			o.onBackEdge(p.Name, req.Name)
		}
	}

	o.placed[p.Name] = true
	o.out = append(o.out, p)
}

// findRemaining returns the first package in name order that is still
// remaining and carries the given name.
func (o *orderer) findRemaining(name string) (int, bool) {
	for _, j := range o.byName[name] {
		if o.remaining[j] {
			return j, true
		}
	}
	return 0, false
}

// inProgress reports whether a package with the given name exists but has
// been taken out of the remaining set without being placed yet.
func (o *orderer) inProgress(name string) bool {
	if o.placed[name] {
		return false
	}
	_, ok := o.byName[name]
	return ok
}
