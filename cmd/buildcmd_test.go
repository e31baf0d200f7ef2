package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstay/openstay-release/internal/hosting"
)

func readDoc(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)
	return string(data)
}

func TestBuildWithVersion_WithoutDeploymentLeavesDocument(t *testing.T) {
	h := newHarness(t)
	r, sha := newProject(t, "0.0.81")
	r.CreateAnnotatedTag("v0.0.81", sha, "Release version 0.0.81")

	out, _, err := h.run("build-with-version", "-p", r.Path())
	require.NoError(t, err)

	vars := parseVars(t, out)
	require.Equal(t, "Done", vars["State"])
	require.Equal(t, "false", vars["Bumped"])
	require.Equal(t, "0.0.81", vars["Version"])
	require.Equal(t, "false", vars["Deployment"])

	require.Equal(t, []string{"tsc", "vite"}, h.runner.argv0s())
	bundle := h.runner.calls[1]
	require.Equal(t, "0.0.81", bundle.Env["VITE_APP_VERSION"])
	require.Equal(t, "2026-05-04T10:30:00.000Z", bundle.Env["VITE_BUILD_TIME"])
	require.Equal(t, "false", bundle.Env["VITE_DEPLOYMENT"])

	doc := readDoc(t, r.Path())
	require.Equal(t, builtDoc, doc)
	require.NotContains(t, doc, "build-version")
	require.NotContains(t, doc, "__OPENSTAY_BUILD__")
}

func TestBuildWithVersion_BumpsThenBuilds(t *testing.T) {
	h := newHarness(t)
	h.env["VITE_DEPLOYMENT"] = "true"
	r, sha := newProject(t, "0.0.81")
	r.CreateAnnotatedTag("v0.0.81", sha, "Release version 0.0.81")
	head := r.CommitFile("src/main.tsx", "render()\n", "feat: render")

	out, _, err := h.run("build-with-version", "-p", r.Path())
	require.NoError(t, err)

	vars := parseVars(t, out)
	require.Equal(t, "true", vars["Bumped"])
	require.Equal(t, "0.0.82", vars["Version"])
	require.Equal(t, "0.0.81", vars["PreviousVersion"])
	require.Equal(t, "v0.0.82", vars["Tag"])
	require.Equal(t, "true", vars["Deployment"])
	require.Equal(t, head, vars["GitCommit"])
	require.Equal(t, "0.0.82", readVersion(t, r.Path()).String())
	require.Equal(t, "0.0.82", h.runner.calls[1].Env["VITE_APP_VERSION"])

	doc := readDoc(t, r.Path())
	require.Contains(t, doc, `<meta name="build-version" content="0.0.82"/>`)
	require.Contains(t, doc, `<meta name="git-commit" content="`+head+`"/>`)
	require.Contains(t, doc, "window.__OPENSTAY_BUILD__")
}

func TestBuildWithVersion_DeploymentFlag(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "1.3.9")

	out, _, err := h.run("build-with-version", "--deployment", "--force", "-p", dir, "--show-variable", "Version")
	require.NoError(t, err)
	require.Equal(t, "1.3.10\n", out)
	require.Contains(t, readDoc(t, dir), `<meta name="build-version" content="1.3.10"/>`)
}

func TestBuildWithVersion_SkipVersionBump(t *testing.T) {
	h := newHarness(t)
	h.env["SKIP_VERSION_BUMP"] = "true"
	dir := newPlainProject(t, "0.0.81")

	out, _, err := h.run("build-with-version", "--force", "-p", dir)
	require.NoError(t, err)

	vars := parseVars(t, out)
	require.Equal(t, "false", vars["Bumped"])
	require.Equal(t, "0.0.81", vars["Version"])
	require.Equal(t, "0.0.81", readVersion(t, dir).String())
}

func TestBuildWithVersion_CompileFailure(t *testing.T) {
	h := newHarness(t)
	h.runner.failOn = "tsc"
	h.runner.code = 2
	dir := newPlainProject(t, "0.0.81")

	_, stderr, err := h.run("build-with-version", "-p", dir, "--explain")
	require.Error(t, err)
	require.Equal(t, 2, exitCode(err))
	require.Equal(t, []string{"tsc"}, h.runner.argv0s())
	require.Contains(t, stderr, "Result: Failed")

	_, statErr := os.Stat(filepath.Join(dir, "dist", "index.html"))
	require.True(t, os.IsNotExist(statErr))
}

func TestBuildWithVersion_RejectsArguments(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "0.0.81")

	_, _, err := h.run("build-with-version", "extra", "-p", dir)
	require.Error(t, err)
	require.Empty(t, h.runner.calls)
}

func TestDeploy_UploadsToTarget(t *testing.T) {
	h := newHarness(t)
	r, sha := newProject(t, "0.0.81")
	r.CreateAnnotatedTag("v0.0.81", sha, "Release version 0.0.81")

	out, _, err := h.run("deploy", "dev", "-p", r.Path())
	require.NoError(t, err)

	vars := parseVars(t, out)
	require.Equal(t, "1", vars["Targets"])
	require.Equal(t, "true", vars["Deployment"])

	require.Len(t, h.putter.uploads, 2)
	doc := h.putter.uploads["index.html"]
	require.Equal(t, "openstay-dev", doc.bucket)
	require.Contains(t, doc.body, `<meta name="build-version" content="0.0.81"/>`)
	require.Equal(t, "console.log(1)", h.putter.uploads["assets/app.js"].body)
}

func TestDeploy_AllTargets(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "0.0.81")

	out, _, err := h.run("deploy", hosting.AllTargets, "-p", dir, "-o", "table")
	require.NoError(t, err)
	require.Contains(t, out, "openstay-dev")
	require.Contains(t, out, "openstay-prod")

	// dev has no prefix, prod uploads under app/.
	require.Len(t, h.putter.uploads, 4)
	require.Equal(t, "openstay-prod", h.putter.uploads["app/index.html"].bucket)
}

func TestDeploy_UnknownTargetBuildsNothing(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "0.0.81")

	_, _, err := h.run("deploy", "staging", "-p", dir)
	require.ErrorIs(t, err, hosting.ErrUnknownTarget)
	require.Empty(t, h.runner.calls)
	require.Equal(t, "0.0.81", readVersion(t, dir).String())
}

func TestInjectMetadata(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "0.0.81")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dist", "index.html"), []byte(builtDoc), 0o644))

	out, _, err := h.run("inject-metadata", "-p", dir)
	require.NoError(t, err)
	require.Equal(t, "false", parseVars(t, out)["Stamped"])
	require.Equal(t, builtDoc, readDoc(t, dir))

	out, _, err = h.run("inject-metadata", "--deployment", "-p", dir)
	require.NoError(t, err)
	vars := parseVars(t, out)
	require.Equal(t, "true", vars["Stamped"])
	require.Equal(t, "2026-05-04T10:30:00.000Z", vars["BuildTime"])
	require.Contains(t, readDoc(t, dir), `<meta name="build-version" content="0.0.81"/>`)
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	r, sha := newProject(t, "0.0.81")
	r.CreateAnnotatedTag("v0.0.81", sha, "Release version 0.0.81")
	r.CommitFile("README.md", "# Openstay\n", "docs: readme")

	out, _, err := h.run("status", "-p", r.Path(), "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"HasChanges": "true"`)
	require.Contains(t, out, `"LatestTag": "v0.0.81"`)
	require.Contains(t, out, `"BumpDisabled": "false"`)
	require.Equal(t, "0.0.81", readVersion(t, r.Path()).String())
}

func TestHistory_EmptyTable(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "0.0.81")

	out, _, err := h.run("history", "-p", dir)
	require.NoError(t, err)
	require.Contains(t, out, "no releases recorded")
}

func TestHistory_BuildAndDeployRecorded(t *testing.T) {
	h := newHarness(t)
	dir := newPlainProject(t, "0.0.81")

	_, _, err := h.run("deploy", "prod", "--force", "-p", dir)
	require.NoError(t, err)

	out, _, err := h.run("history", "-p", dir)
	require.NoError(t, err)
	lines := strings.Count(out, "0.0.82")
	require.GreaterOrEqual(t, lines, 3)
	require.Contains(t, out, "deploy")
	require.Contains(t, out, "prod")
}
