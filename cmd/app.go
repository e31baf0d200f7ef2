package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/build"
	"github.com/openstay/openstay-release/internal/changes"
	"github.com/openstay/openstay-release/internal/config"
	"github.com/openstay/openstay-release/internal/git"
	ghprovider "github.com/openstay/openstay-release/internal/github"
	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/hosting"
	"github.com/openstay/openstay-release/internal/logging"
	"github.com/openstay/openstay-release/internal/manifest"
	"github.com/openstay/openstay-release/internal/metadata"
	"github.com/openstay/openstay-release/internal/release"
	"github.com/openstay/openstay-release/internal/semver"
)

// Seams replaced by tests.
var (
	snapshotEnv     = config.Snapshot
	newRunner       = func() build.Runner { return build.ExecRunner{} }
	newObjectClient = hosting.ClientFactory(hosting.NewS3Client)
	now             = time.Now
)

// app is the wiring shared by every command: configuration, logger,
// repository and manifest for the project under --path.
type app struct {
	dir      string
	env      config.Environment
	cfg      *config.Config
	log      *slog.Logger
	repo     *git.GoGitRepository
	store    *git.RepositoryStore
	manifest *manifest.Store
	out      io.Writer
	errOut   io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	// 1. Flags and logger.
	if err := validateOutputFormat(); err != nil {
		return nil, err
	}
	verbosity, err := logging.ParseVerbosity(flagVerbosity)
	if err != nil {
		return nil, err
	}
	log := logging.New(cmd.ErrOrStderr(), verbosity)

	// 2. Project directory.
	dir, err := filepath.Abs(flagPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	// 3. Environment, read once.
	env := snapshotEnv()

	// 4. Configuration.
	cfg, err := config.Load(dir, flagConfig, env)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	a := &app{
		dir:    dir,
		env:    env,
		cfg:    cfg,
		log:    log,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	a.manifest = manifest.NewStore(a.manifestPath(), log)

	// 5. Repository. Its absence is an expected state, not an error.
	repo, err := git.Open(dir)
	switch {
	case err == nil:
		a.repo = repo
		a.store = git.NewRepositoryStore(repo)
	case errors.Is(err, git.ErrNoRepository):
		log.Debug("no git repository", "path", dir)
	default:
		log.Warn("git repository unavailable", "path", dir, "err", err.Error())
	}

	return a, nil
}

func (a *app) manifestPath() string {
	p := a.cfg.ManifestPath()
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, p)
}

// bumpDisabled reports SKIP_VERSION_BUMP or skip-version-bump.
func (a *app) bumpDisabled() bool {
	return a.env.SkipVersionBump() || a.cfg.BumpDisabled()
}

// bumpKind resolves the bump kind: VERSION_BUMP_TYPE, then the positional
// argument, then the configured default.
func (a *app) bumpKind(args []string) (semver.BumpKind, error) {
	raw, fromEnv := a.env.BumpKindOverride()
	switch {
	case fromEnv:
	case len(args) > 0:
		raw = args[0]
	default:
		return a.cfg.DefaultBumpKind(), nil
	}

	kind, fellBack, err := semver.ParseBumpKind(raw, a.cfg.UnknownKindPolicy())
	if err != nil {
		return kind, err
	}
	if fellBack {
		a.log.Warn("unrecognized bump kind, using patch", "kind", raw)
	}
	return kind, nil
}

func (a *app) detector() *changes.Detector {
	var vcs changes.VcsQuery
	root := ""
	if a.store != nil {
		vcs = a.store
		root = a.repo.WorkingDirectory()
	}
	return changes.NewDetector(vcs, changes.Options{
		TagPrefix:    a.cfg.Prefix(),
		ManifestPath: changes.ManifestPathInRepo(root, a.manifestPath()),
	}, a.log)
}

func (a *app) tagger(ctx context.Context) *release.Tagger {
	opts := release.Options{
		Prefix: a.cfg.Prefix(),
		Push:   a.cfg.PushTags(),
		Remote: a.cfg.Remote(),
		Token:  a.env.Get(config.EnvGitHubToken),
	}
	if opts.Push && a.cfg.PublishReleases() {
		opts.Publisher = a.publisher(ctx)
	}

	var repo release.Repo
	if a.store != nil {
		repo = a.store
	}
	return release.NewTagger(repo, opts, a.log)
}

// publisher returns the GitHub release publisher, or nil when it cannot be
// configured. Publishing is optional, so problems are warnings.
func (a *app) publisher(ctx context.Context) release.Publisher {
	owner, repo, err := ghprovider.ParseOwnerRepo(a.cfg.GitHubRepository(a.env))
	if err != nil {
		a.log.Warn("release publishing disabled", "err", err.Error())
		return nil
	}
	client, err := ghprovider.NewClient(ctx, ghprovider.ClientConfig{
		Token:      a.env.Get(config.EnvGitHubToken),
		AppID:      a.env.GitHubAppID(),
		AppKeyPath: a.env.Get(config.EnvGitHubAppKey),
		BaseURL:    a.cfg.GitHubAPIURL(a.env),
		Owner:      owner,
	})
	if err != nil {
		a.log.Warn("release publishing disabled", "err", err.Error())
		return nil
	}
	return ghprovider.NewReleasePublisher(client, owner, repo)
}

func (a *app) bumper(ctx context.Context) *release.Bumper {
	return release.NewBumper(a.manifest, a.tagger(ctx), a.log)
}

// detected reports the commit and branch of HEAD, when there is one.
func (a *app) detected() metadata.Detected {
	if a.store == nil {
		return metadata.Detected{}
	}
	head, err := a.store.Head()
	if err != nil {
		a.log.Debug("HEAD unavailable for build metadata", "err", err.Error())
		return metadata.Detected{}
	}
	d := metadata.Detected{Branch: head.FriendlyName()}
	if head.Tip != nil {
		d.Commit = head.Tip.Sha
	}
	return d
}

// record appends to the release history. Failures are warnings.
func (a *app) record(ctx context.Context, rec history.ReleaseRecord) {
	if flagNoHistory || !a.cfg.HistoryEnabled() {
		return
	}
	s, err := a.openHistory()
	if err != nil {
		a.log.Warn("release history unavailable", "err", err.Error())
		return
	}
	defer s.Close()

	if rec.Commit == "" || rec.Branch == "" {
		d := a.detected()
		if rec.Commit == "" {
			rec.Commit = d.Commit
		}
		if rec.Branch == "" {
			rec.Branch = d.Branch
		}
	}
	rec.CreatedAt = now()
	if _, err := s.Record(ctx, rec); err != nil {
		a.log.Warn("recording release history failed", "err", err.Error())
	}
}

func (a *app) openHistory() (*history.Store, error) {
	p := a.cfg.HistoryPath()
	if !filepath.IsAbs(p) {
		p = filepath.Join(a.dir, p)
	}
	return history.Open(p)
}

func (a *app) explain(fn func(io.Writer) error) {
	if !flagExplain {
		return
	}
	if err := fn(a.errOut); err != nil {
		a.log.Warn("writing explanation failed", "err", err.Error())
	}
}

// progressFile is the terminal a spinner may draw on, if any.
func (a *app) progressFile() *os.File {
	if f, ok := a.errOut.(*os.File); ok {
		return f
	}
	return nil
}
