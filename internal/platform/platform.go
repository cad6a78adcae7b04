package platform

import (
	"os"
	"path/filepath"
	"runtime"

	"bootstrap-machine/internal/logger"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

// Profile captures the machine facts every stage depends on: the CPU
// architecture and the Homebrew prefix derived from it. It is resolved once
// at startup and passed by parameter into each component so a single run can
// never observe two different prefixes.
type Profile struct {
	Arch        string // runtime architecture identifier, e.g. "arm64" or "amd64"
	PackageRoot string // Homebrew prefix: /opt/homebrew on Apple Silicon, /usr/local otherwise
}

// Resolve probes the CPU architecture and maps it to the Homebrew prefix.
func Resolve() Profile {
	return ResolveArch(runtime.GOARCH)
}

// ResolveArch maps an architecture identifier to a Profile. There is no error
// path: any architecture that is not Apple Silicon falls back to the Intel
// prefix, matching Homebrew's own layout convention.
func ResolveArch(arch string) Profile {
	root := "/usr/local"
	if arch == "arm64" {
		root = "/opt/homebrew"
	}
	logger.Debug("[DEBUG] Resolved platform: arch=%s package_root=%s\n", arch, root)
	return Profile{Arch: arch, PackageRoot: root}
}

// Bin returns the prefix's bin directory.
func (p Profile) Bin() string {
	return filepath.Join(p.PackageRoot, "bin")
}

// Brew returns the expected path of the brew binary under the prefix.
func (p Profile) Brew() string {
	return filepath.Join(p.PackageRoot, "bin", "brew")
}

// RunContext holds the per-run flags that govern every confirmation gate.
// It is computed once from the environment and arguments at startup and is
// read-only thereafter.
type RunContext struct {
	Interactive bool     // stdin is a terminal; prompts may block on it
	Force       bool     // skip the dotfiles confirmation prompt
	ChangeShell bool     // the user opted in to switching the login shell
	RunBrew     bool     // RUN_BREW=1 opt-in for package installs without a terminal
	ExtraArgs   []string // passed through verbatim to every brew install invocation
}

// NewRunContext builds the RunContext from parsed flags and the environment.
// A .env file next to the working directory is loaded first, best-effort, so
// wrapper invocations can set RUN_BREW without exporting it.
func NewRunContext(force, changeShell bool, extraArgs []string) RunContext {
	if err := godotenv.Load(); err != nil {
		logger.Debug("[DEBUG] No .env file loaded: %v\n", err)
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	runBrew := os.Getenv("RUN_BREW") == "1"

	logger.Debug("[DEBUG] Run context: interactive=%t force=%t change_shell=%t run_brew=%t\n",
		interactive, force, changeShell, runBrew)

	return RunContext{
		Interactive: interactive,
		Force:       force,
		ChangeShell: changeShell,
		RunBrew:     runBrew,
		ExtraArgs:   extraArgs,
	}
}
