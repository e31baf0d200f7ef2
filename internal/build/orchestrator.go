// Package build runs the versioned build pipeline: change check, optional
// bump, compile, bundle and metadata stamping.
package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/openstay/openstay-release/internal/changes"
	"github.com/openstay/openstay-release/internal/logging"
	"github.com/openstay/openstay-release/internal/metadata"
	"github.com/openstay/openstay-release/internal/release"
	"github.com/openstay/openstay-release/internal/semver"
)

// Variables handed to the bundler.
const (
	EnvAppVersion     = "VITE_APP_VERSION"
	EnvBuildTime      = "VITE_BUILD_TIME"
	EnvBuildTimestamp = "VITE_BUILD_TIMESTAMP"
	EnvDeployment     = "VITE_DEPLOYMENT"
)

// VersionReader yields the current version, never failing.
// *manifest.Store implements it.
type VersionReader interface {
	ReadOrDefault() semver.SemanticVersion
}

// ChangeChecker decides whether a bump is warranted.
// *changes.Detector implements it.
type ChangeChecker interface {
	Assess() changes.Assessment
}

// VersionBumper persists and tags a bump. *release.Bumper implements it.
type VersionBumper interface {
	Bump(ctx context.Context, current semver.SemanticVersion, kind semver.BumpKind) (release.BumpResult, error)
}

// Stamper writes build metadata into the bundled document.
// *metadata.Injector implements it.
type Stamper interface {
	InjectFile(path string, md metadata.BuildMetadata, deployment bool) error
}

var (
	_ ChangeChecker = (*changes.Detector)(nil)
	_ VersionBumper = (*release.Bumper)(nil)
	_ Stamper       = (*metadata.Injector)(nil)
)

// Options are the per-run settings.
type Options struct {
	// Dir is the project directory commands run in.
	Dir     string
	Compile []string
	Bundle  []string
	// OutputDir and Document locate the bundled HTML, relative to Dir.
	OutputDir string
	Document  string

	Kind         semver.BumpKind
	Force        bool
	BumpDisabled bool
	Deployment   bool

	// Env is the environment snapshot. Commands see it plus the build
	// variables.
	Env        map[string]string
	Detected   metadata.Detected
	CustomMeta map[string]string

	// Output receives command output. Nil discards it.
	Output io.Writer
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Store    VersionReader
	Detector ChangeChecker
	Bumper   VersionBumper
	Stamper  Stamper
	Runner   Runner
	Progress Progress
	Now      func() time.Time
}

// Result is the record of one run.
type Result struct {
	State       State                  `json:"state"`
	Transitions []Transition           `json:"transitions"`
	Assessment  changes.Assessment     `json:"assessment"`
	Previous    semver.SemanticVersion `json:"previous"`
	Version     semver.SemanticVersion `json:"version"`
	Bumped      bool                   `json:"bumped"`
	Tag         string                 `json:"tag,omitempty"`
	Metadata    metadata.BuildMetadata `json:"metadata"`
	Deployment  bool                   `json:"deployment"`
	Document    string                 `json:"document"`
}

// Orchestrator drives one build through its states.
type Orchestrator struct {
	deps Deps
	opts Options
	log  *slog.Logger

	state  State
	result Result
}

// NewOrchestrator creates an Orchestrator in the Idle state.
func NewOrchestrator(deps Deps, opts Options, log *slog.Logger) *Orchestrator {
	if deps.Runner == nil {
		deps.Runner = ExecRunner{}
	}
	if deps.Progress == nil {
		deps.Progress = NoProgress{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	return &Orchestrator{deps: deps, opts: opts, log: logging.OrDiscard(log), state: StateIdle}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the pipeline. On failure the result ends in Failed and the
// error is a *StepError. Nothing already done is rolled back.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	o.result.Deployment = o.opts.Deployment
	o.result.Document = filepath.Join(o.opts.Dir, o.opts.OutputDir, o.opts.Document)

	// Step 1: decide whether to bump.
	current := o.deps.Store.ReadOrDefault()
	o.result.Previous, o.result.Version = current, current

	switch {
	case o.opts.BumpDisabled:
		o.result.Assessment = changes.Disabled()
		o.transition(StateSkipBump, string(changes.ReasonBumpDisabled))
	default:
		o.transition(StateChangeCheck, "")
		if o.opts.Force {
			o.result.Assessment = changes.Forced()
		} else {
			o.result.Assessment = o.deps.Detector.Assess()
		}
		reason := o.result.Assessment.Reason.String()
		if o.result.Assessment.HasChanges {
			o.transition(StateBumping, reason)
		} else {
			o.transition(StateSkipBump, reason)
		}
	}

	// Step 2: bump, write and tag.
	if o.state == StateBumping {
		bumped, err := o.deps.Bumper.Bump(ctx, current, o.opts.Kind)
		if err != nil {
			return o.fail(&StepError{Step: StateBumping, ExitCode: 1, Err: err})
		}
		o.result.Version = bumped.Version
		o.result.Bumped = true
		o.result.Tag = bumped.Tag
	} else {
		o.log.Info("building current version", "version", current.String(), "reason", o.result.Assessment.Reason.String())
	}

	md := metadata.Resolve(o.opts.Env, metadata.Inputs{
		Version:  o.result.Version.String(),
		Detected: o.opts.Detected,
		Custom:   o.opts.CustomMeta,
		Now:      o.deps.Now(),
	})
	o.result.Metadata = md

	// Step 3: compile.
	o.transition(StateCompiling, "")
	if err := o.runStep(ctx, StateCompiling, o.opts.Compile, o.opts.Env); err != nil {
		return o.fail(err)
	}

	// Step 4: bundle with the build variables, then stamp.
	o.transition(StateBundling, "")
	if err := o.runStep(ctx, StateBundling, o.opts.Bundle, o.bundleEnv(md)); err != nil {
		return o.fail(err)
	}
	if err := o.deps.Stamper.InjectFile(o.result.Document, md, o.opts.Deployment); err != nil {
		return o.fail(&StepError{Step: StateBundling, ExitCode: 1, Err: err})
	}

	o.transition(StateDone, "")
	o.log.Info("build complete", "version", o.result.Version.String(), "bumped", o.result.Bumped, "deployment", o.opts.Deployment)
	return o.result, nil
}

func (o *Orchestrator) bundleEnv(md metadata.BuildMetadata) map[string]string {
	env := maps.Clone(o.opts.Env)
	if env == nil {
		env = make(map[string]string)
	}
	env[EnvAppVersion] = md.Version
	env[EnvBuildTime] = md.BuildTime
	env[EnvBuildTimestamp] = strconv.FormatInt(md.BuildTimestampMs, 10)
	env[EnvDeployment] = strconv.FormatBool(o.opts.Deployment)
	return env
}

// runStep runs one external tool. With a spinner on the terminal the
// tool's output is held back and only shown when it fails.
func (o *Orchestrator) runStep(ctx context.Context, step State, argv []string, env map[string]string) *StepError {
	label := strings.Join(argv, " ")
	o.log.Info("running build step", "step", step.String(), "command", label)

	out := o.opts.Output
	var held bytes.Buffer
	if Interactive(o.deps.Progress) {
		out = &held
	}

	o.deps.Progress.Start(fmt.Sprintf("%s: %s", step, label))
	err := o.deps.Runner.Run(ctx, Command{
		Argv:   argv,
		Dir:    o.opts.Dir,
		Env:    env,
		Stdout: out,
		Stderr: out,
	})
	o.deps.Progress.Stop()

	if err != nil {
		if held.Len() > 0 {
			_, _ = o.opts.Output.Write(held.Bytes())
		}
		return &StepError{Step: step, Command: label, ExitCode: ExitCode(err), Err: err}
	}
	return nil
}

func (o *Orchestrator) transition(to State, reason string) {
	from := o.state
	if !CanTransition(from, to) {
		panic(fmt.Sprintf("build: illegal transition %s -> %s", from, to))
	}
	o.state = to
	o.result.State = to
	o.result.Transitions = append(o.result.Transitions, Transition{From: from, To: to, Reason: reason})
	o.log.Debug("build state", "from", from.String(), "to", to.String(), "reason", reason)
}

func (o *Orchestrator) fail(err *StepError) (Result, error) {
	o.transition(StateFailed, err.Error())
	o.log.Error("build failed", "step", err.Step.String(), "exit_code", err.Code(), "err", err.Err.Error())
	return o.result, err
}
