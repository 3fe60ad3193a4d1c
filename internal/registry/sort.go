package registry

import (
	"cmp"
	"slices"
)

// SortByPriority returns the records ordered by ascending priority. The sort
// is stable: records with equal priority keep their input order, which keeps
// the generated registry identical across runs.
func SortByPriority(records []Record) []Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return sorted
}
