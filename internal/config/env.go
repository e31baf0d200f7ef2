package config

import (
	"maps"
	"os"
	"strconv"
	"strings"
)

// Recognized environment variables.
const (
	EnvSkipVersionBump = "SKIP_VERSION_BUMP"
	EnvVersionBumpType = "VERSION_BUMP_TYPE"
	EnvDeployment      = "VITE_DEPLOYMENT"
	EnvDeploymentType  = "VITE_DEPLOYMENT_TYPE"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvGitHubRepo      = "GITHUB_REPOSITORY"
	EnvGitHubAPIURL    = "GITHUB_API_URL"
	EnvGitHubAppID     = "GH_APP_ID"
	EnvGitHubAppKey    = "GH_APP_PRIVATE_KEY_PATH"
)

// Environment is a snapshot of the process environment, taken once at
// startup and passed to every component. It is never re-read.
type Environment struct {
	vars map[string]string
}

// Snapshot captures the current process environment.
func Snapshot() Environment {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	return Environment{vars: vars}
}

// NewEnvironment builds a snapshot from explicit values.
func NewEnvironment(vars map[string]string) Environment {
	return Environment{vars: maps.Clone(vars)}
}

// Get returns the value of key, or the empty string.
func (e Environment) Get(key string) string {
	return e.vars[key]
}

// Vars returns a copy of every variable.
func (e Environment) Vars() map[string]string {
	return maps.Clone(e.vars)
}

// With returns a copy of the snapshot with key set to value.
func (e Environment) With(key, value string) Environment {
	vars := maps.Clone(e.vars)
	if vars == nil {
		vars = make(map[string]string)
	}
	vars[key] = value
	return Environment{vars: vars}
}

// SkipVersionBump reports SKIP_VERSION_BUMP=true.
func (e Environment) SkipVersionBump() bool {
	return isTrue(e.vars[EnvSkipVersionBump])
}

// BumpKindOverride returns VERSION_BUMP_TYPE when it is set.
func (e Environment) BumpKindOverride() (string, bool) {
	v := strings.TrimSpace(e.vars[EnvVersionBumpType])
	return v, v != ""
}

// Deployment reports VITE_DEPLOYMENT=true.
func (e Environment) Deployment() bool {
	return isTrue(e.vars[EnvDeployment])
}

// GitHubAppID parses GH_APP_ID; malformed values count as unset.
func (e Environment) GitHubAppID() int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(e.vars[EnvGitHubAppID]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Overrides returns the configuration layer the environment contributes.
// GitHub settings are not part of it: the config file wins over
// GITHUB_REPOSITORY and GITHUB_API_URL, see Config.GitHubRepository.
func (e Environment) Overrides() *Config {
	cfg := &Config{}
	if e.SkipVersionBump() {
		cfg.SkipVersionBump = boolPtr(true)
	}
	return cfg
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
