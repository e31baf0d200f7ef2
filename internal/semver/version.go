package semver

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrInvalidVersionFormat is returned when a string is not exactly
// "major.minor.patch" with decimal digits in each part.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// ErrVersionOverflow is returned when a bump would take a component past
// the largest representable value.
var ErrVersionOverflow = errors.New("version component overflow")

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// SemanticVersion represents a release version.
// Values are immutable; every method returns a new value.
type SemanticVersion struct {
	Major int64
	Minor int64
	Patch int64
}

// Zero is the version used when no manifest version can be read.
var Zero = SemanticVersion{}

// TryParse attempts to parse a version string.
// Returns the parsed version and true if successful.
func TryParse(s string) (SemanticVersion, bool) {
	v, err := Parse(s)
	if err != nil {
		return SemanticVersion{}, false
	}
	return v, true
}

// Parse parses a strict "major.minor.patch" string. Prefixes, pre-release
// tags, build metadata and missing parts are all rejected.
func Parse(s string) (SemanticVersion, error) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return SemanticVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, s)
	}

	var parts [3]int64
	for i := range parts {
		n, err := strconv.ParseInt(matches[i+1], 10, 64)
		if err != nil {
			return SemanticVersion{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersionFormat, s, err)
		}
		parts[i] = n
	}

	return SemanticVersion{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// ParseTag parses a tag name of the form <prefix>major.minor.patch.
func ParseTag(name, prefix string) (SemanticVersion, bool) {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return SemanticVersion{}, false
	}
	return TryParse(name[len(prefix):])
}

// CompareTo compares two SemanticVersions.
// Returns a negative value, zero, or a positive value.
func (v SemanticVersion) CompareTo(other SemanticVersion) int {
	if v.Major != other.Major {
		if v.Major > other.Major {
			return 1
		}
		return -1
	}

	if v.Minor != other.Minor {
		if v.Minor > other.Minor {
			return 1
		}
		return -1
	}

	if v.Patch != other.Patch {
		if v.Patch > other.Patch {
			return 1
		}
		return -1
	}

	return 0
}

// Bump returns the next version for the given kind.
// Lower fields are zeroed when a higher field is bumped.
func (v SemanticVersion) Bump(kind BumpKind) (SemanticVersion, error) {
	switch kind {
	case BumpMajor:
		if v.Major == math.MaxInt64 {
			return v, fmt.Errorf("%w: cannot bump major of %s", ErrVersionOverflow, v)
		}
		return SemanticVersion{Major: v.Major + 1}, nil
	case BumpMinor:
		if v.Minor == math.MaxInt64 {
			return v, fmt.Errorf("%w: cannot bump minor of %s", ErrVersionOverflow, v)
		}
		return SemanticVersion{Major: v.Major, Minor: v.Minor + 1}, nil
	default:
		if v.Patch == math.MaxInt64 {
			return v, fmt.Errorf("%w: cannot bump patch of %s", ErrVersionOverflow, v)
		}
		return SemanticVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	}
}

// String returns the "major.minor.patch" form.
func (v SemanticVersion) String() string {
	return strconv.FormatInt(v.Major, 10) + "." +
		strconv.FormatInt(v.Minor, 10) + "." +
		strconv.FormatInt(v.Patch, 10)
}

// TagName returns the release tag name for this version.
func (v SemanticVersion) TagName(prefix string) string {
	return prefix + v.String()
}

// IsZero returns true for 0.0.0.
func (v SemanticVersion) IsZero() bool {
	return v == Zero
}

// MarshalText renders the version as "major.minor.patch" in JSON output.
func (v SemanticVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
