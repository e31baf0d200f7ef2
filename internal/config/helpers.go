package config

import "github.com/openstay/openstay-release/internal/semver"

func stringPtr(s string) *string        { return &s }
func boolPtr(b bool) *bool              { return &b }
func strSlicePtr(ss []string) *[]string { return &ss }

func bumpKindPtr(k semver.BumpKind) *semver.BumpKind {
	return &k
}

func policyPtr(p semver.UnknownKindPolicy) *semver.UnknownKindPolicy {
	return &p
}
