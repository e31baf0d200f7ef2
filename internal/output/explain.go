package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/openstay/openstay-release/internal/build"
	"github.com/openstay/openstay-release/internal/changes"
)

const arrowPrefix = "→"

// maxListedPaths caps the changed paths printed by WriteExplanation.
const maxListedPaths = 20

// WriteExplanation writes how a change check reached its decision.
func WriteExplanation(w io.Writer, a changes.Assessment) error {
	fmt.Fprintln(w, "Change check:")

	tag := "(none)"
	if a.Tag != "" {
		tag = fmt.Sprintf("%s (%s)", a.Tag, a.TagVersion)
	}
	fmt.Fprintf(w, "  %-20s %s\n", "latest tag:", tag)
	if a.Tag != "" {
		fmt.Fprintf(w, "  %-20s %d\n", "commits since tag:", a.CommitsSinceTag)
	}

	if len(a.ChangedPaths) > 0 {
		fmt.Fprintf(w, "  %-20s %d\n", "changed paths:", len(a.ChangedPaths))
		for i, p := range a.ChangedPaths {
			if i == maxListedPaths {
				fmt.Fprintf(w, "    %s ... %d more\n", arrowPrefix, len(a.ChangedPaths)-maxListedPaths)
				break
			}
			fmt.Fprintf(w, "    %s %s\n", arrowPrefix, p)
		}
	}

	fmt.Fprintln(w)
	decision := "keep version"
	if a.HasChanges {
		decision = "bump"
	}
	fmt.Fprintf(w, "Decision: %s (%s)\n", decision, describeReason(a.Reason))
	return nil
}

// WriteBuildExplanation writes the state path of a build and its outcome.
func WriteBuildExplanation(w io.Writer, res build.Result) error {
	fmt.Fprintln(w, "Build states:")
	for _, tr := range res.Transitions {
		line := fmt.Sprintf("  %s %s %s", tr.From, arrowPrefix, tr.To)
		if tr.Reason != "" {
			line += " (" + tr.Reason + ")"
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Result: %s, version %s\n", res.State, res.Version)
	return nil
}

// FormatExplanation returns the change check explanation as a string.
func FormatExplanation(a changes.Assessment) string {
	var sb strings.Builder
	_ = WriteExplanation(&sb, a)
	return sb.String()
}

func describeReason(r changes.Reason) string {
	switch r {
	case changes.ReasonNoRepository:
		return "no repository, assuming changes"
	case changes.ReasonNoPriorTag:
		return "commits exist but nothing was released yet"
	case changes.ReasonNoCommits:
		return "repository has no commits"
	case changes.ReasonTagUnresolvable:
		return "latest release tag does not resolve to a commit"
	case changes.ReasonNoCommitsSinceTag:
		return "no commits since the latest release tag"
	case changes.ReasonEmptyDiff:
		return "commits since the tag change no files"
	case changes.ReasonVersionOnlyDiff:
		return "only the manifest version changed"
	case changes.ReasonFileDiffNonEmpty:
		return "files changed since the latest release tag"
	case changes.ReasonQueryFailed:
		return "history query failed, assuming changes"
	case changes.ReasonForced:
		return "bump forced"
	case changes.ReasonBumpDisabled:
		return "bumping disabled"
	default:
		return string(r)
	}
}
