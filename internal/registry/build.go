package registry

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/interop-labs/modreg/internal/logging"
)

// Build runs the whole pipeline over packages: dependency ordering, factory
// aggregation and priority sorting. It never fails; coerced declarations and
// skipped cyclic requirements are logged through the logger carried by ctx.
func Build(ctx context.Context, packages []Package, opts Options) *Plan {
	log := logging.FromContext(ctx)

	ordered := newOrderer(packages, func(from, to string) {
		log.Debug("dependency cycle, requirement skipped", "package", from, "requires", to)
	}).run()

	records := aggregate(ordered, opts, func(pkg, msg string) {
		log.Warn("factory declaration coerced", "package", pkg, "detail", msg)
	})

	log.Debug("factories collected", "packages", len(ordered), "factories", len(records))

	return &Plan{
		Packages: ordered,
		Records:  SortByPriority(records),
	}
}

// PrintPlan prints the package order and the factory list.
func PrintPlan(w io.Writer, plan *Plan) {
	fmt.Fprintf(w, "  Packages (%d, dependencies first):\n", len(plan.Packages))
	for i, pkg := range plan.Packages {
		connector := "├── "
		if i == len(plan.Packages)-1 {
			connector = "└── "
		}
		label := pkg.DisplayName()
		if pkg.Version != "" {
			label += " " + pkg.Version
		}
		switch {
		case pkg.IsRoot:
			label += " (root)"
		case pkg.Dev:
			label += " (dev)"
		}
		fmt.Fprintf(w, "  %s%s\n", connector, label)
	}
	fmt.Fprintln(w)

	if len(plan.Records) == 0 {
		fmt.Fprintln(w, "  No module factories declared.")
		return
	}

	fmt.Fprintf(w, "  Factories (%d, by priority):\n", len(plan.Records))
	width := 0
	for _, r := range plan.Records {
		width = max(width, len(r.Name))
	}
	for _, r := range plan.Records {
		fmt.Fprintf(w, "  %4d  %-*s  %s\n", r.Priority, width, r.Name, oneLine(r.Module))
	}
}

// oneLine collapses a multi-line expression for tabular display.
func oneLine(expr string) string {
	return strings.Join(strings.Fields(expr), " ")
}
