package shellenv

import (
	"os"
	"path/filepath"
	"strings"

	"bootstrap-machine/internal/execx"
	"bootstrap-machine/internal/logger"
	"bootstrap-machine/internal/platform"
)

// shellsFile is the system's allowed-login-shells registry.
const shellsFile = "/etc/shells"

// Changer switches the login shell to the Homebrew-provided bash. The whole
// branch is opt-in via --change-shell and only runs on a terminal; a failed
// switch reports the manual remedy instead of failing the run.
type Changer struct {
	Runner execx.Runner

	// ShellsPath overrides the allowed-shells registry location, for tests.
	ShellsPath string
}

// Change registers the Homebrew bash in the allowed-shells file if needed and
// asks chsh to make it the login shell. It never returns an error by design:
// the bootstrap result is usable either way, so every failure path here logs
// and moves on.
func (c Changer) Change(profile platform.Profile, ctx platform.RunContext) {
	if !ctx.ChangeShell {
		logger.Debug("[DEBUG] --change-shell not given. Leaving the login shell alone.\n")
		return
	}
	if !ctx.Interactive {
		logger.Info("[INFO] Not a terminal. Skipping the shell change (chsh may prompt for a password).\n")
		return
	}

	target := filepath.Join(profile.Bin(), "bash")

	if os.Getenv("SHELL") == target {
		logger.Info("[INFO] Login shell is already %s\n", target)
		return
	}
	if _, err := os.Stat(target); err != nil {
		logger.Warn("[WARN] %s is not installed. Add bash to the package manifest first.\n", target)
		return
	}

	if !c.registered(target) {
		logger.Info("[INFO] Adding %s to %s...\n", target, c.shellsPath())
		output, err := c.Runner.Run("sudo", "sh", "-c", "echo "+target+" >> "+c.shellsPath())
		if err != nil {
			logger.Error("[ERROR] Could not register %s in %s: %v\nOutput: %s\n", target, c.shellsPath(), err, output)
			logger.Warn("[WARN] Change the shell manually with: chsh -s %s\n", target)
			return
		}
	}

	output, err := c.Runner.Run("chsh", "-s", target)
	if err != nil {
		logger.Error("[ERROR] chsh failed: %v\nOutput: %s\n", err, output)
		logger.Warn("[WARN] Change the shell manually with: chsh -s %s\n", target)
		return
	}
	logger.Info("[INFO] Login shell changed to %s. Takes effect on the next login.\n", target)
}

// registered reports whether target already has a line in the allowed-shells
// registry. An unreadable registry counts as not registered so the append is
// attempted and its error surfaces with context.
func (c Changer) registered(target string) bool {
	data, err := os.ReadFile(c.shellsPath())
	if err != nil {
		logger.Debug("[DEBUG] Could not read %s: %v\n", c.shellsPath(), err)
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == target {
			return true
		}
	}
	return false
}

func (c Changer) shellsPath() string {
	if c.ShellsPath != "" {
		return c.ShellsPath
	}
	return shellsFile
}
