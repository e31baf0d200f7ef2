package cmd

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/openstay/openstay-release/internal/build"
	"github.com/openstay/openstay-release/internal/config"
	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/hosting"
	"github.com/openstay/openstay-release/internal/manifest"
	"github.com/openstay/openstay-release/internal/semver"
	"github.com/openstay/openstay-release/internal/testutil"
)

const projectConfig = `build:
  compile: [tsc, -b]
  bundle: [vite, build]
hosting:
  dev:
    bucket: openstay-dev
    region: eu-west-1
  prod:
    bucket: openstay-prod
    prefix: app
`

const builtDoc = "<!doctype html><html><head><title>Openstay</title></head><body><div id=\"root\"></div></body></html>"

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func manifestJSON(version string) string {
	return "{\n  \"name\": \"openstay\",\n  \"version\": \"" + version + "\",\n  \"private\": true\n}\n"
}

// newProject creates a repository with a committed manifest at version and
// the test config. It returns the repo and the sha of the commit.
func newProject(t *testing.T, version string) (*testutil.TestRepo, string) {
	t.Helper()
	r := testutil.NewTestRepo(t)
	r.WriteFile("package.json", manifestJSON(version))
	r.WriteFile("openstay-release.yml", projectConfig)
	sha := r.CommitStaged("chore: initial project", "package.json", "openstay-release.yml")
	return r, sha
}

// newPlainProject creates a project directory that is not a repository.
func newPlainProject(t *testing.T, version string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifestJSON(version)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openstay-release.yml"), []byte(projectConfig), 0o644))
	return dir
}

func readVersion(t *testing.T, dir string) semver.SemanticVersion {
	t.Helper()
	v, err := manifest.NewStore(filepath.Join(dir, "package.json"), nil).Read()
	require.NoError(t, err)
	return v
}

type exitErr struct{ code int }

func (e exitErr) Error() string { return "exit status" }
func (e exitErr) ExitCode() int { return e.code }

// scriptedRunner stands in for the compile and bundle tools. The bundle
// step writes dist/index.html like vite does.
type scriptedRunner struct {
	mu     sync.Mutex
	calls  []build.Command
	failOn string
	code   int
}

func (r *scriptedRunner) Run(_ context.Context, c build.Command) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if c.Argv[0] == r.failOn {
		return exitErr{code: r.code}
	}
	if c.Argv[0] == "vite" {
		dist := filepath.Join(c.Dir, "dist")
		if err := os.MkdirAll(filepath.Join(dist, "assets"), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dist, "index.html"), []byte(builtDoc), 0o644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o644)
	}
	return nil
}

func (r *scriptedRunner) argv0s() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Argv[0])
	}
	return out
}

type upload struct {
	bucket string
	body   string
}

type recordingPutter struct {
	mu      sync.Mutex
	uploads map[string]upload
}

func (p *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(in.Body); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uploads[aws.ToString(in.Key)] = upload{bucket: aws.ToString(in.Bucket), body: buf.String()}
	return &s3.PutObjectOutput{}, nil
}

// harness swaps the command seams for the duration of a test.
type harness struct {
	t      *testing.T
	env    map[string]string
	runner *scriptedRunner
	putter *recordingPutter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		env:    map[string]string{},
		runner: &scriptedRunner{},
		putter: &recordingPutter{uploads: make(map[string]upload)},
	}

	origEnv, origRunner, origClient, origNow := snapshotEnv, newRunner, newObjectClient, now
	snapshotEnv = func() config.Environment { return config.NewEnvironment(h.env) }
	newRunner = func() build.Runner { return h.runner }
	newObjectClient = func(context.Context, hosting.Target) (hosting.ObjectPutter, error) { return h.putter, nil }
	now = func() time.Time { return fixedNow }

	t.Cleanup(func() {
		snapshotEnv, newRunner, newObjectClient, now = origEnv, origRunner, origClient, origNow
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return h
}

// run executes the CLI with args and returns stdout, stderr and the error.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags() {
	flagPath = "."
	flagConfig = ""
	flagOutput = ""
	flagShowVariable = ""
	flagExplain = false
	flagVerbosity = "info"
	flagNoHistory = false

	flagSmartForce = false
	flagBuildForce = false
	flagBuildDeployment = false
	flagDeployForce = false
	flagDeployConcurrency = hosting.DefaultConcurrency
	flagInjectDeployment = false
	flagHistoryLimit = history.DefaultLimit
}

// parseVars reads KEY=value lines.
func parseVars(t *testing.T, out string) map[string]string {
	t.Helper()
	vars := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), "=")
		require.True(t, ok, "unexpected output line %q", sc.Text())
		vars[k] = v
	}
	require.NoError(t, sc.Err())
	return vars
}
