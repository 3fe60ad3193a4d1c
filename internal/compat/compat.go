package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/interop-labs/modreg/internal/registry"
)

// Status is the outcome of a compatibility check.
type Status int

const (
	// StatusUnchecked means there was nothing to compare: no constraint, a
	// development build, or a constraint that is not a version range.
	StatusUnchecked Status = iota
	// StatusSatisfied means the running version meets the constraint.
	StatusSatisfied
	// StatusUnsatisfied means the running version is outside the constraint.
	StatusUnsatisfied
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusUnsatisfied:
		return "unsatisfied"
	default:
		return "unchecked"
	}
}

// Result describes one check.
type Result struct {
	Package    string
	Constraint string
	Version    string
	Status     Status
	Reason     string // set when Status is StatusUnchecked
}

// stability flags such as "@dev" or "@stable" carry no range information.
var stabilityFlag = regexp.MustCompile(`@[a-zA-Z]+`)

// Check looks up installer among requires and tests running against its
// constraint. Errors are only returned for constraints that look like
// version ranges but fail to parse.
func Check(requires []registry.Requirement, installer, running string) (Result, error) {
	res := Result{Package: installer, Version: running}

	var found bool
	for _, r := range requires {
		if r.Name == installer {
			res.Constraint = r.Constraint
			found = true
			break
		}
	}
	if !found {
		res.Reason = "installer package not required by the root project"
		return res, nil
	}

	v, err := parseSemver(running)
	if err != nil {
		res.Reason = fmt.Sprintf("running version %q is not a release", running)
		return res, nil
	}

	expr := normalizeConstraint(res.Constraint)
	if expr == "" || strings.HasPrefix(expr, "dev-") {
		res.Reason = fmt.Sprintf("constraint %q is not a version range", res.Constraint)
		return res, nil
	}

	c, err := semver.NewConstraint(expr)
	if err != nil {
		return res, fmt.Errorf("parsing constraint %q for %s: %w", res.Constraint, installer, err)
	}

	if c.Check(v) {
		res.Status = StatusSatisfied
	} else {
		res.Status = StatusUnsatisfied
	}
	return res, nil
}

// normalizeConstraint rewrites the package manager's constraint dialect into
// the form semver.NewConstraint accepts: single "|" becomes "||" and stability
// flags are dropped.
func normalizeConstraint(constraint string) string {
	expr := stabilityFlag.ReplaceAllString(constraint, "")
	expr = strings.ReplaceAll(expr, "||", "|")
	expr = strings.ReplaceAll(expr, "|", "||")
	return strings.TrimSpace(expr)
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
