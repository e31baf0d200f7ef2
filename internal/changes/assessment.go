package changes

import (
	"regexp"
	"strings"

	"github.com/openstay/openstay-release/internal/git"
	"github.com/openstay/openstay-release/internal/semver"
)

// Reason explains how an Assessment was reached.
type Reason string

const (
	ReasonNoRepository      Reason = "no-repository"
	ReasonNoPriorTag        Reason = "no-prior-tag"
	ReasonNoCommits         Reason = "no-commits"
	ReasonTagUnresolvable   Reason = "tag-unresolvable"
	ReasonNoCommitsSinceTag Reason = "no-commits-since-tag"
	ReasonEmptyDiff         Reason = "empty-diff"
	ReasonVersionOnlyDiff   Reason = "version-only-diff"
	ReasonFileDiffNonEmpty  Reason = "file-diff-nonempty"
	ReasonQueryFailed       Reason = "query-failed"

	// Set by callers that bypass detection.
	ReasonForced       Reason = "forced"
	ReasonBumpDisabled Reason = "bump-disabled"
)

func (r Reason) String() string {
	return string(r)
}

// Assessment is the outcome of one change check. It is never persisted.
type Assessment struct {
	HasChanges      bool
	Reason          Reason
	Tag             string
	TagVersion      semver.SemanticVersion
	CommitsSinceTag int
	ChangedPaths    []string
}

// Forced returns the assessment used when a bump is requested regardless
// of history.
func Forced() Assessment {
	return Assessment{HasChanges: true, Reason: ReasonForced}
}

// Disabled returns the assessment used when bumping is turned off.
func Disabled() Assessment {
	return Assessment{HasChanges: false, Reason: ReasonBumpDisabled}
}

var versionLineRegex = regexp.MustCompile(`^\s*"version"\s*:\s*"[^"]*"\s*,?\s*$`)

// IsReleaseNoiseOnly is the default NoiseFilter. It accepts a diff whose
// non-blank added and removed lines all set the "version" key, with at
// least one added line. An unrelated field edited next to "version" is
// still caught, but a nested "version" key is not told apart from the
// top-level one.
func IsReleaseNoiseOnly(diff git.FileDiff) bool {
	added := 0
	for _, line := range diff.Added {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !versionLineRegex.MatchString(line) {
			return false
		}
		added++
	}
	for _, line := range diff.Removed {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !versionLineRegex.MatchString(line) {
			return false
		}
	}
	return added > 0
}
