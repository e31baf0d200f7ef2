package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvironment_SkipVersionBump(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{" True ", true},
		{"1", false},
		{"yes", false},
		{"false", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			env := NewEnvironment(map[string]string{EnvSkipVersionBump: tt.value})
			require.Equal(t, tt.want, env.SkipVersionBump())
		})
	}
}

func TestEnvironment_BumpKindOverride(t *testing.T) {
	_, ok := NewEnvironment(nil).BumpKindOverride()
	require.False(t, ok)

	_, ok = NewEnvironment(map[string]string{EnvVersionBumpType: "  "}).BumpKindOverride()
	require.False(t, ok)

	kind, ok := NewEnvironment(map[string]string{EnvVersionBumpType: " minor "}).BumpKindOverride()
	require.True(t, ok)
	require.Equal(t, "minor", kind)
}

func TestEnvironment_Deployment(t *testing.T) {
	require.False(t, NewEnvironment(nil).Deployment())
	require.True(t, NewEnvironment(map[string]string{EnvDeployment: "true"}).Deployment())
}

func TestEnvironment_GitHubAppID(t *testing.T) {
	require.Equal(t, int64(0), NewEnvironment(nil).GitHubAppID())
	require.Equal(t, int64(0), NewEnvironment(map[string]string{EnvGitHubAppID: "abc"}).GitHubAppID())
	require.Equal(t, int64(12345), NewEnvironment(map[string]string{EnvGitHubAppID: "12345"}).GitHubAppID())
}

func TestEnvironment_WithCopies(t *testing.T) {
	base := NewEnvironment(map[string]string{"A": "1"})
	next := base.With(EnvDeployment, "true")

	require.True(t, next.Deployment())
	require.False(t, base.Deployment())
	require.Equal(t, "1", next.Get("A"))

	var zero Environment
	require.Equal(t, "x", zero.With("K", "x").Get("K"))
}

func TestEnvironment_NewEnvironmentCopiesInput(t *testing.T) {
	vars := map[string]string{"A": "1"}
	env := NewEnvironment(vars)
	vars["A"] = "2"

	require.Equal(t, "1", env.Get("A"))

	out := env.Vars()
	out["A"] = "3"
	require.Equal(t, "1", env.Get("A"))
}

func TestEnvironment_Snapshot(t *testing.T) {
	t.Setenv("OPENSTAY_TEST_SNAPSHOT", "value=with=equals")
	env := Snapshot()
	require.Equal(t, "value=with=equals", env.Get("OPENSTAY_TEST_SNAPSHOT"))
}

func TestEnvironment_Overrides(t *testing.T) {
	cfg := NewEnvironment(nil).Overrides()
	require.Nil(t, cfg.SkipVersionBump)

	cfg = NewEnvironment(map[string]string{EnvSkipVersionBump: "true"}).Overrides()
	require.NotNil(t, cfg.SkipVersionBump)
	require.True(t, *cfg.SkipVersionBump)
}
