// Package registry turns a flat list of installed packages into the ordered
// list of module factories that the host framework loads at startup. It orders
// packages so dependencies come first, normalizes each package's factory
// declarations into canonical records, and sorts the records by priority.
package registry
