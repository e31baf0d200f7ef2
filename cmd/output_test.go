package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstay/openstay-release/internal/config"
	"github.com/openstay/openstay-release/internal/hosting"
)

func TestWriteVariables(t *testing.T) {
	vars := map[string]string{"Version": "0.0.82", "TagName": "v0.0.82"}

	tests := []struct {
		name     string
		output   string
		variable string
		want     string
	}{
		{name: "default", want: "TagName=v0.0.82\nVersion=0.0.82\n"},
		{name: "json", output: formatJSON, want: "{\n  \"TagName\": \"v0.0.82\",\n  \"Version\": \"0.0.82\"\n}\n"},
		{name: "single variable wins over format", output: formatJSON, variable: "TagName", want: "v0.0.82\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(resetFlags)
			flagOutput, flagShowVariable = tt.output, tt.variable

			var buf bytes.Buffer
			require.NoError(t, writeVariables(&buf, "Version", vars))
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteVariables_Table(t *testing.T) {
	t.Cleanup(resetFlags)
	flagOutput = formatTable

	var buf bytes.Buffer
	require.NoError(t, writeVariables(&buf, "Version bump", map[string]string{"Version": "0.0.82"}))
	require.Contains(t, buf.String(), "Version bump")
	require.Contains(t, buf.String(), "0.0.82")
}

func TestWriteVariables_UnknownVariable(t *testing.T) {
	t.Cleanup(resetFlags)
	flagShowVariable = "Nope"

	var buf bytes.Buffer
	require.ErrorContains(t, writeVariables(&buf, "Version", map[string]string{}), `unknown variable "Nope"`)
}

func TestHostingTargets(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(projectConfig))
	require.NoError(t, err)

	targets := hostingTargets(cfg)
	require.Equal(t, map[string]hosting.Target{
		"dev":  {Name: "dev", Bucket: "openstay-dev", Region: "eu-west-1"},
		"prod": {Name: "prod", Bucket: "openstay-prod", Prefix: "app"},
	}, targets)
}
