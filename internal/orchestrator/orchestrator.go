package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"bootstrap-machine/internal/brew"
	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/defaults"
	"bootstrap-machine/internal/dotfiles"
	"bootstrap-machine/internal/execx"
	"bootstrap-machine/internal/fonts"
	"bootstrap-machine/internal/logger"
	"bootstrap-machine/internal/platform"
	"bootstrap-machine/internal/shellenv"
	"bootstrap-machine/internal/state"
)

// sudoRefreshInterval is how often the sudo timestamp is refreshed while
// settings are being applied. sudo's default timeout is five minutes, so one
// minute leaves plenty of slack.
const sudoRefreshInterval = time.Minute

// sublimeApp is the app bundle checked for before linking the subl helper.
const sublimeApp = "/Applications/Sublime Text.app"

// Orchestrator runs the full bootstrap sequence. All collaborators are
// fields so tests can substitute the runner, input, and fixup paths.
type Orchestrator struct {
	Config  config.Config
	Profile platform.Profile
	Ctx     platform.RunContext
	Runner  execx.Runner
	State   *state.State
	Stdin   io.Reader

	// SublimeApp, VimDir, and FontDir override the fixup locations, for
	// tests. Empty means the real macOS paths.
	SublimeApp string
	VimDir     string
	FontDir    string

	stage Stage
}

// Run walks the stage machine from Start to Done. Only package-manager
// failures abort; the dotfiles, settings, and fixup stages log their own
// problems and the run continues, since each of them is independently safe
// to attempt.
func (o *Orchestrator) Run() error {
	o.stage = StageStart

	if err := o.enter(StageProbePlatform); err != nil {
		return err
	}
	if o.Profile == (platform.Profile{}) {
		o.Profile = platform.Resolve()
	}
	logger.Info("[INFO] Architecture %s, package root %s\n", o.Profile.Arch, o.Profile.PackageRoot)

	installer := brew.Installer{Profile: o.Profile, Runner: o.Runner}

	if err := o.enter(StageEnsurePackageManager); err != nil {
		return err
	}
	if err := installer.EnsureBrew(); err != nil {
		return o.fail(err)
	}

	if err := o.enter(StageInstallPackages); err != nil {
		return err
	}
	if !o.Ctx.Interactive && !o.Ctx.RunBrew {
		logger.Info("[INFO] Not a terminal and RUN_BREW is not set. Skipping package installation.\n")
	} else {
		count, err := installer.Install(o.Config.Packages, o.Ctx.ExtraArgs)
		if err != nil {
			return o.fail(err)
		}
		logger.Info("[INFO] Ran %d package installs\n", count)
	}

	// Optional branch: switch the login shell to the Homebrew bash. Gated on
	// the explicit flag plus a terminal; never fatal.
	shellenv.Changer{Runner: o.Runner}.Change(o.Profile, o.Ctx)

	if err := o.enter(StageSyncDotfiles); err != nil {
		return err
	}
	o.updateRepo()
	result, err := dotfiles.Sync(o.Config.Dotfiles, o.Ctx, o.Stdin)
	if err != nil {
		// A half-finished copy is recoverable: every file that did land is
		// correct, and the next run converges the rest.
		logger.Error("[ERROR] Dotfiles sync incomplete: %v\n", err)
	} else {
		logger.Info("[INFO] Dotfiles stage: %s\n", result)
	}

	if err := o.enter(StageApplySettings); err != nil {
		return err
	}
	applier := defaults.Applier{Runner: o.Runner}
	sudoCtx, cancelSudo := context.WithCancel(context.Background())
	applier.KeepSudoAlive(sudoCtx, sudoRefreshInterval)
	applier.Apply(o.Config.Settings, o.State)
	cancelSudo()
	applier.RestartAffected()
	applier.RebuildLaunchServices()

	if err := o.enter(StagePostFixups); err != nil {
		return err
	}
	o.linkSublime()
	o.scaffoldVim()
	fonts.Sync(o.Config.Fonts, o.State, o.fontDir())

	if err := o.enter(StageDone); err != nil {
		return err
	}
	logger.Banner("Bootstrap complete. Open a new shell to pick up the environment.\n")
	return nil
}

// enter validates and performs the transition, printing the stage banner.
func (o *Orchestrator) enter(to Stage) error {
	if !allowedNext(o.stage, to) {
		return transitionError(o.stage, to)
	}
	o.stage = to
	if !to.Terminal() {
		logger.Banner("==> %s\n", to)
	}
	return nil
}

// fail moves to the Failed terminal state and passes the fatal error up.
func (o *Orchestrator) fail(err error) error {
	if allowedNext(o.stage, StageFailed) {
		o.stage = StageFailed
	}
	logger.Error("[ERROR] Bootstrap failed: %v\n", err)
	return err
}

// Stage exposes the current stage, for tests.
func (o *Orchestrator) Stage() Stage {
	return o.stage
}

// updateRepo pulls the checkout before syncing so the dotfiles that land are
// current. Offline machines and detached checkouts are normal: a failed pull
// falls back to the local tree as-is.
func (o *Orchestrator) updateRepo() {
	output, err := o.Runner.Run("git", "pull")
	if err != nil {
		logger.Warn("[WARN] git pull failed, syncing from the local tree: %v\n%s\n", err, output)
		return
	}
	logger.Info("[INFO] Checkout is up to date\n")
}

// linkSublime links the Sublime Text command-line helper into the package
// root's bin when the app bundle is installed. Missing app or existing link
// are both normal; nothing here is fatal.
func (o *Orchestrator) linkSublime() {
	app := o.SublimeApp
	if app == "" {
		app = sublimeApp
	}
	if _, err := os.Stat(app); err != nil {
		logger.Info("[INFO] Sublime Text not installed. Skipping the subl link.\n")
		return
	}

	source := filepath.Join(app, "Contents", "SharedSupport", "bin", "subl")
	link := filepath.Join(o.Profile.Bin(), "subl")
	if _, err := os.Lstat(link); err == nil {
		logger.Debug("[DEBUG] %s already exists. Leaving it alone.\n", link)
		return
	}
	if err := os.Symlink(source, link); err != nil {
		logger.Warn("[WARN] Could not link %s: %v\n", link, err)
		return
	}
	logger.Info("[INFO] Linked %s -> %s\n", link, source)
}

// scaffoldVim creates vim's backup, swap, and undo directories so the synced
// .vimrc's settings work on first launch.
func (o *Orchestrator) scaffoldVim() {
	base := o.VimDir
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".vim")
	}
	for _, dir := range []string{"backups", "swaps", "undo"} {
		path := filepath.Join(base, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Warn("[WARN] Could not create %s: %v\n", path, err)
			continue
		}
		logger.Debug("[DEBUG] Ensured %s\n", path)
	}
}

func (o *Orchestrator) fontDir() string {
	if o.FontDir != "" {
		return o.FontDir
	}
	return fonts.UserFontDir()
}
