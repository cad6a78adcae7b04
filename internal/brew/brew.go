package brew

import (
	"fmt"
	"os"
	"path/filepath"

	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/execx"
	"bootstrap-machine/internal/logger"
	"bootstrap-machine/internal/platform"
)

// installerURL is Homebrew's official bootstrap installer script.
const installerURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// Installer drives Homebrew for the resolved platform prefix. All external
// invocations go through the Runner so tests can intercept them.
type Installer struct {
	Profile platform.Profile
	Runner  execx.Runner
}

// EnsureBrew bootstraps Homebrew when the brew binary is absent at the
// resolved prefix. A bootstrap failure is fatal: nothing downstream can be
// installed without the package manager.
func (b Installer) EnsureBrew() error {
	if _, err := os.Stat(b.Profile.Brew()); err == nil {
		logger.Debug("[DEBUG] Homebrew already present at %s\n", b.Profile.Brew())
		return nil
	}

	logger.Info("[INFO] Homebrew not found at %s. Running the bootstrap installer...\n", b.Profile.Brew())
	output, err := b.Runner.Run("/bin/bash", "-c", "curl -fsSL "+installerURL+" | /bin/bash")
	if err != nil {
		logger.Error("[ERROR] Homebrew bootstrap failed: %v\nOutput: %s\n", err, output)
		return fmt.Errorf("homebrew bootstrap failed: %w", err)
	}
	logger.Info("[INFO] Homebrew installed at %s\n", b.Profile.PackageRoot)
	return nil
}

// Install updates Homebrew, upgrades installed formulae, then installs every
// manifest entry in order, and finishes with a cleanup. Homebrew itself
// no-ops on already-installed packages, so there is no pre-check here.
//
// Failure policy is strict: the first failing brew invocation aborts the
// whole installer. A partially installed package set is treated as an unsafe
// base for the rest of the bootstrap.
//
// extraArgs are appended verbatim to every install invocation, so callers
// can pass flags like --cask straight through from the command line.
func (b Installer) Install(pkgs []config.Package, extraArgs []string) (int, error) {
	if err := b.brew("update"); err != nil {
		return 0, err
	}
	if err := b.brew("upgrade"); err != nil {
		return 0, err
	}

	installed := 0
	for _, pkg := range pkgs {
		logger.Info("[INFO] Installing %s (%s)...\n", pkg.Name, pkg.Category)
		args := append([]string{"install", pkg.Name}, extraArgs...)
		if err := b.brew(args...); err != nil {
			return installed, err
		}
		installed++

		// GNU coreutils ships sha256sum as gsha256sum; scripts expect the
		// conventional name. Link it once, guarded by an existence check so
		// repeat runs don't trip over the previous link.
		if pkg.Name == "coreutils" {
			b.linkSha256sum()
		}
	}

	if err := b.brew("cleanup"); err != nil {
		return installed, err
	}
	return installed, nil
}

// brew runs one brew invocation via the prefix-resolved binary.
func (b Installer) brew(args ...string) error {
	cmdline := b.Profile.Brew()
	logger.Debug("[DEBUG] Running: %s %v\n", cmdline, args)
	output, err := b.Runner.Run(cmdline, args...)
	if err != nil {
		logger.Error("[ERROR] brew %s failed: %v\nOutput: %s\n", args[0], err, output)
		return fmt.Errorf("brew %s failed: %w", args[0], err)
	}
	return nil
}

// linkSha256sum creates <prefix>/bin/sha256sum -> gsha256sum unless something
// already lives at that path. Link failure is logged, not fatal: the package
// install itself succeeded.
func (b Installer) linkSha256sum() {
	link := filepath.Join(b.Profile.Bin(), "sha256sum")
	if _, err := os.Lstat(link); err == nil {
		logger.Debug("[DEBUG] %s already exists. Leaving it alone.\n", link)
		return
	}
	if err := os.Symlink("gsha256sum", link); err != nil {
		logger.Warn("[WARN] Could not link %s to gsha256sum: %v\n", link, err)
		return
	}
	logger.Info("[INFO] Linked %s -> gsha256sum\n", link)
}
