// Package semver provides the immutable release version type and the
// bump rules applied to it.
package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBumpKind is returned by ParseBumpKind under PolicyReject.
var ErrUnknownBumpKind = errors.New("unknown bump kind")

// BumpKind represents which field of a version to increment.
type BumpKind int

const (
	BumpPatch BumpKind = iota
	BumpMinor
	BumpMajor
)

func (k BumpKind) String() string {
	switch k {
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "unknown"
	}
}

// UnknownKindPolicy decides what happens to an unrecognized bump kind.
type UnknownKindPolicy int

const (
	// PolicyFallbackToPatch treats any unrecognized kind as a patch bump.
	PolicyFallbackToPatch UnknownKindPolicy = iota
	// PolicyReject fails with ErrUnknownBumpKind.
	PolicyReject
)

func (p UnknownKindPolicy) String() string {
	switch p {
	case PolicyFallbackToPatch:
		return "fallback-to-patch"
	case PolicyReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseUnknownKindPolicy parses a policy name (case-insensitive).
func ParseUnknownKindPolicy(s string) (UnknownKindPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fallback-to-patch", "fallback", "patch":
		return PolicyFallbackToPatch, nil
	case "reject", "error":
		return PolicyReject, nil
	default:
		return 0, fmt.Errorf("unknown bump kind policy %q", s)
	}
}

// ParseBumpKind parses a bump kind. The empty string is a patch bump.
// The returned bool reports whether an unrecognized value fell back to
// patch under PolicyFallbackToPatch.
func ParseBumpKind(s string, policy UnknownKindPolicy) (BumpKind, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "patch":
		return BumpPatch, false, nil
	case "minor":
		return BumpMinor, false, nil
	case "major":
		return BumpMajor, false, nil
	}

	if policy == PolicyReject {
		return 0, false, fmt.Errorf("%w %q: expected major, minor or patch", ErrUnknownBumpKind, s)
	}
	return BumpPatch, true, nil
}
