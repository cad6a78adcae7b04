package defaults

import (
	"fmt"
	"os"
	"strings"

	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/execx"
	"bootstrap-machine/internal/logger"
	"bootstrap-machine/internal/state"
)

// lsregisterPath is the well-known location of the Launch Services
// registration tool. It is an internal macOS binary that has moved between
// releases, so its use is gated on the path existing.
const lsregisterPath = "/System/Library/Frameworks/CoreServices.framework/Frameworks/LaunchServices.framework/Support/lsregister"

// affectedProcesses are the long-running desktop-shell processes restarted
// after settings are applied so the changes take visible effect.
var affectedProcesses = []string{
	"cfprefsd",
	"Dock",
	"Finder",
	"SystemUIServer",
	"Safari",
	"Terminal",
}

// SkippedSetting reports one manifest entry that was not executed and why.
type SkippedSetting struct {
	Domain string
	Key    string
	Reason config.Policy
}

// Report summarizes one Apply pass.
type Report struct {
	Applied int
	Failed  int
	Skipped []SkippedSetting
}

// Applier writes macOS defaults settings through the Runner.
type Applier struct {
	Runner execx.Runner

	// Lsregister overrides the lsregister path, for tests.
	Lsregister string
}

// Apply processes every manifest entry independently. Entries whose policy is
// not apply are recorded as skipped and never reach the Runner. A failed
// write is logged and counted; it never stops the remaining entries, since
// each defaults write is independent of the others.
//
// The state records the last value applied per domain:key. It is only used
// for an "unchanged" debug line; the write is issued regardless, so drift
// introduced outside this tool is always converged back.
func (a Applier) Apply(entries []config.Setting, st *state.State) Report {
	var report Report

	for _, s := range entries {
		key := fmt.Sprintf("%s:%s", s.Domain, s.Key)

		if s.Policy != config.PolicyApply {
			logger.Info("[INFO] Skipping %s (%s)\n", key, s.Policy)
			report.Skipped = append(report.Skipped, SkippedSetting{Domain: s.Domain, Key: s.Key, Reason: s.Policy})
			continue
		}

		// Values are handed to defaults without a shell in between, so env
		// references like ${HOME} are expanded here.
		value := os.ExpandEnv(s.Value)

		if prev, ok := st.Settings[key]; ok && prev.Value == value {
			logger.Debug("[DEBUG] %s unchanged since last run (%s)\n", key, value)
		}

		// Build the arguments for the `defaults write` command based on setting type
		args := []string{"write", s.Domain, s.Key}
		switch s.Type {
		case "bool":
			args = append(args, "-bool", value)
		case "int":
			args = append(args, "-int", value)
		case "float":
			args = append(args, "-float", value)
		case "dict-add":
			// Compound values carry their own key/value tokens; pass them raw.
			args = append(args, "-dict-add")
			args = append(args, strings.Fields(value)...)
		case "array":
			args = append(args, "-array")
			args = append(args, strings.Fields(value)...)
		default:
			// Default to string type if none of the above
			args = append(args, "-string", value)
		}

		output, err := a.Runner.Run("defaults", args...)
		if err != nil {
			logger.Error("[ERROR] Failed to apply setting %s: %v\nOutput: %s\n", key, err, output)
			report.Failed++
			continue
		}

		logger.Info("[INFO] Applied setting: %s = %s\n", key, value)
		report.Applied++

		st.Settings[key] = state.SettingState{
			Domain: s.Domain,
			Key:    s.Key,
			Value:  value,
		}
	}

	logger.Info("[INFO] Settings done: %d applied, %d skipped, %d failed\n",
		report.Applied, len(report.Skipped), report.Failed)
	return report
}

// RestartAffected terminates the desktop-shell processes whose preferences
// were touched so the changes show up without a logout. A process that is
// not running is the normal case for some of these; killall's error is
// swallowed with a debug line.
func (a Applier) RestartAffected() {
	for _, name := range affectedProcesses {
		output, err := a.Runner.Run("killall", name)
		if err != nil {
			logger.Debug("[DEBUG] killall %s: %v (%s)\n", name, err, output)
			continue
		}
		logger.Info("[INFO] Restarted %s\n", name)
	}
}

// RebuildLaunchServices rebuilds the application-registration database, but
// only when the lsregister binary exists at its well-known path. On systems
// where the tool has moved or been removed this is a silent skip, never a
// hard failure.
func (a Applier) RebuildLaunchServices() {
	path := a.Lsregister
	if path == "" {
		path = lsregisterPath
	}
	if _, err := os.Stat(path); err != nil {
		logger.Debug("[DEBUG] lsregister not found at %s. Skipping rebuild.\n", path)
		return
	}

	logger.Info("[INFO] Rebuilding the Launch Services database...\n")
	output, err := a.Runner.Run(path, "-kill", "-r", "-domain", "local", "-domain", "system", "-domain", "user")
	if err != nil {
		logger.Warn("[WARN] lsregister rebuild failed: %v\nOutput: %s\n", err, output)
	}
}
