// Package version checks the manager's reported version against SemVer
// constraints.
package version

import (
	"fmt"
	"regexp"

	masterminds "github.com/Masterminds/semver/v3"
)

const logPrefix = "version:check"

// managerVersionRegex extracts the version from the manager identification
// string, e.g. "RE Manager v0.0.18".
var managerVersionRegex = regexp.MustCompile(`v(\d+\.\d+\.\d+(?:-[\w.]+)?(?:\+[\w.]+)?)\s*$`)

// ParseManagerVersion extracts the SemVer version from a manager
// identification string.
func ParseManagerVersion(msg string) (*masterminds.Version, error) {
	match := managerVersionRegex.FindStringSubmatch(msg)
	if match == nil {
		return nil, fmt.Errorf("%s - no version found in manager message %q", logPrefix, msg)
	}
	v, err := masterminds.NewVersion(match[1])
	if err != nil {
		return nil, fmt.Errorf("%s - invalid version %q: %w", logPrefix, match[1], err)
	}
	return v, nil
}

// CheckManagerVersion verifies the manager identification string against a
// SemVer constraint (e.g. ">=0.0.18"). Returns nil when the constraint holds.
func CheckManagerVersion(msg, constraint string) error {
	c, err := masterminds.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("%s - invalid constraint %q: %w", logPrefix, constraint, err)
	}
	v, err := ParseManagerVersion(msg)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%s - manager version %s does not satisfy %q", logPrefix, v, constraint)
	}
	return nil
}
