// Package output renders release results as CI variables, JSON, tables
// and plain-text explanations.
package output

import (
	"strconv"

	"github.com/openstay/openstay-release/internal/build"
	"github.com/openstay/openstay-release/internal/changes"
	"github.com/openstay/openstay-release/internal/release"
	"github.com/openstay/openstay-release/internal/semver"
)

// VersionVariables returns the variables describing a version.
func VersionVariables(v semver.SemanticVersion, prefix string) map[string]string {
	return map[string]string{
		"Version": v.String(),
		"Major":   strconv.FormatInt(v.Major, 10),
		"Minor":   strconv.FormatInt(v.Minor, 10),
		"Patch":   strconv.FormatInt(v.Patch, 10),
		"TagName": v.TagName(prefix),
	}
}

// AssessmentVariables returns the variables describing a change check.
func AssessmentVariables(a changes.Assessment) map[string]string {
	return map[string]string{
		"HasChanges":      strconv.FormatBool(a.HasChanges),
		"Reason":          a.Reason.String(),
		"LatestTag":       a.Tag,
		"CommitsSinceTag": strconv.Itoa(a.CommitsSinceTag),
	}
}

// BumpVariables returns the variables of a performed bump.
func BumpVariables(res release.BumpResult, prefix string) map[string]string {
	vars := VersionVariables(res.Version, prefix)
	vars["PreviousVersion"] = res.Previous.String()
	vars["BumpKind"] = res.Kind.String()
	vars["Bumped"] = "true"
	vars["Tagged"] = strconv.FormatBool(res.Tag != "")
	if res.ReleaseURL != "" {
		vars["ReleaseUrl"] = res.ReleaseURL
	}
	return vars
}

// SkippedVariables returns the variables of a bump that did not happen.
func SkippedVariables(current semver.SemanticVersion, prefix string, a changes.Assessment) map[string]string {
	vars := VersionVariables(current, prefix)
	vars["PreviousVersion"] = current.String()
	vars["Bumped"] = "false"
	vars["Tagged"] = "false"
	vars["Reason"] = a.Reason.String()
	return vars
}

// BuildVariables returns the variables of a finished build.
func BuildVariables(res build.Result, prefix string) map[string]string {
	vars := VersionVariables(res.Version, prefix)
	vars["PreviousVersion"] = res.Previous.String()
	vars["Bumped"] = strconv.FormatBool(res.Bumped)
	vars["Reason"] = res.Assessment.Reason.String()
	vars["State"] = res.State.String()
	vars["Deployment"] = strconv.FormatBool(res.Deployment)
	vars["BuildTime"] = res.Metadata.BuildTime
	vars["GitCommit"] = res.Metadata.GitCommit
	vars["GitBranch"] = res.Metadata.GitBranch
	if res.Tag != "" {
		vars["Tag"] = res.Tag
	}
	return vars
}

// Merge returns a new map with the entries of every argument, later
// maps winning.
func Merge(vars ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range vars {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
