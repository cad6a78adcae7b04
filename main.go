package main

import (
	"bootstrap-machine/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// This design cleanly separates the CLI interface (cmd package) from main,
// allowing easier testing, extension, and reuse of the CLI commands.
//
// The bootstrap-machine project is a macOS environment bootstrapper that:
//   - Reads YAML manifests describing Homebrew packages, macOS defaults settings,
//     a dotfiles sync rule, and fonts to install
//   - Probes the machine's CPU architecture once at startup and resolves the
//     Homebrew prefix from it (/opt/homebrew on Apple Silicon, /usr/local otherwise)
//   - Bootstraps Homebrew when absent, then installs the package manifest,
//     relying on Homebrew's own no-op behavior for already-installed packages
//   - Syncs a dotfiles tree into the user's home directory behind a confirmation
//     prompt (skipped safely when no terminal is attached)
//   - Applies macOS system settings using the `defaults` command-line tool,
//     honoring per-entry skip policies for deprecated, SIP-blocked, and
//     security-weakening entries
//   - Runs best-effort post fixups: editor symlink, vim scratch directories,
//     and font installation from release archives
//
// Error handling strategy:
//   - Package-manager failures are fatal: an inconsistent package set is not a
//     safe base to configure on top of, so the run aborts with a non-zero exit
//   - Everything downstream of package installation is independently idempotent
//     and applied best-effort: individual failures are logged and the run
//     continues to the next stage
//
// There is no persisted orchestrator state between runs; idempotence is
// structural (every operation is safe to repeat), with a small advisory JSON
// state file used only to avoid re-downloading identical font releases.
func main() {
	cmd.Execute()
}
