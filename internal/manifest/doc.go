// Package manifest parses the dependency manager's lock file and the root
// project manifest, and validates both against embedded JSON Schemas. Requires
// maps are decoded through yaml.Node so that their authored key order, which
// drives dependency ordering, survives parsing.
package manifest
