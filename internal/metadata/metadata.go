// Package metadata builds the traceability record of a build and stamps it
// into the bundled HTML document.
package metadata

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// BuildTimeLayout is RFC 3339 in UTC with millisecond precision.
const BuildTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// CustomEnvPrefix marks environment variables that become custom keys.
const CustomEnvPrefix = "VITE_BUILD_META_"

// CustomMetaPrefix starts the meta name of every custom key.
const CustomMetaPrefix = "build-custom-"

const (
	defaultCommit         = "unknown"
	defaultBranch         = "main"
	defaultEnvironment    = "production"
	defaultBuildType      = "deployment"
	defaultDeploymentType = "manual"
)

var (
	commitVars = []string{"VITE_GIT_COMMIT", "GITHUB_SHA", "CI_COMMIT_SHA", "VERCEL_GIT_COMMIT_SHA", "COMMIT_REF"}
	branchVars = []string{"VITE_GIT_BRANCH", "GITHUB_REF_NAME", "CI_COMMIT_REF_NAME", "VERCEL_GIT_COMMIT_REF", "BRANCH"}
	tagVars    = []string{"VITE_GIT_TAG", "CI_COMMIT_TAG"}
)

// BuildMetadata is built once per build and never changed afterwards.
type BuildMetadata struct {
	Version          string            `json:"version"`
	BuildTime        string            `json:"buildTime"`
	BuildTimestampMs int64             `json:"buildTimestamp"`
	Environment      string            `json:"environment"`
	BuildType        string            `json:"buildType"`
	DeploymentType   string            `json:"deploymentType"`
	GitCommit        string            `json:"gitCommit"`
	GitBranch        string            `json:"gitBranch"`
	GitTag           string            `json:"gitTag,omitempty"`
	Custom           map[string]string `json:"custom,omitempty"`
}

// Detected holds what the local repository reports about HEAD.
type Detected struct {
	Commit string
	Branch string
}

// Inputs are the non-environment parts of a resolution.
type Inputs struct {
	Version  string
	Detected Detected
	// Custom keys from configuration. VITE_BUILD_META_* variables win.
	Custom map[string]string
	Now    time.Time
}

// Resolve builds the metadata from the environment snapshot. Each VCS
// field walks its fallback chain: explicit override, CI platform
// variables, the detected value, then a literal default.
func Resolve(env map[string]string, in Inputs) BuildMetadata {
	now := in.Now.UTC()
	return BuildMetadata{
		Version:          in.Version,
		BuildTime:        now.Format(BuildTimeLayout),
		BuildTimestampMs: now.UnixMilli(),
		Environment:      firstNonEmpty(env["VITE_BUILD_ENV"], env["NODE_ENV"], defaultEnvironment),
		BuildType:        firstNonEmpty(env["VITE_BUILD_TYPE"], defaultBuildType),
		DeploymentType:   firstNonEmpty(env["VITE_DEPLOYMENT_TYPE"], defaultDeploymentType),
		GitCommit:        firstNonEmpty(lookupFirst(env, commitVars), in.Detected.Commit, defaultCommit),
		GitBranch:        firstNonEmpty(lookupFirst(env, branchVars), in.Detected.Branch, defaultBranch),
		GitTag:           lookupFirst(env, tagVars),
		Custom:           customKeys(env, in.Custom),
	}
}

// CustomKeys returns the custom keys in sorted order.
func (m BuildMetadata) CustomKeys() []string {
	keys := make([]string, 0, len(m.Custom))
	for k := range m.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Metas returns the meta name/content pairs in document order.
func (m BuildMetadata) Metas() [][2]string {
	metas := [][2]string{
		{"build-version", m.Version},
		{"build-time", m.BuildTime},
		{"build-timestamp", strconv.FormatInt(m.BuildTimestampMs, 10)},
		{"build-environment", m.Environment},
		{"build-type", m.BuildType},
		{"deployment-type", m.DeploymentType},
		{"git-commit", m.GitCommit},
		{"git-branch", m.GitBranch},
	}
	if m.GitTag != "" {
		metas = append(metas, [2]string{"git-tag", m.GitTag})
	}
	for _, k := range m.CustomKeys() {
		metas = append(metas, [2]string{CustomMetaPrefix + k, m.Custom[k]})
	}
	return metas
}

// NormalizeKey lowercases a custom key and turns underscores into hyphens.
func NormalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "_", "-")
}

func customKeys(env map[string]string, configured map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range configured {
		if key := NormalizeKey(k); key != "" {
			out[key] = v
		}
	}
	for k, v := range env {
		if !strings.HasPrefix(k, CustomEnvPrefix) {
			continue
		}
		if key := NormalizeKey(strings.TrimPrefix(k, CustomEnvPrefix)); key != "" {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lookupFirst(env map[string]string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(env[k]); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
