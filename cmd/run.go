package cmd

import (
	"os"

	"bootstrap-machine/internal/brew"
	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/defaults"
	"bootstrap-machine/internal/dotfiles"
	"bootstrap-machine/internal/execx"
	"bootstrap-machine/internal/fonts"
	"bootstrap-machine/internal/orchestrator"
	"bootstrap-machine/internal/platform"
	"bootstrap-machine/internal/state"

	"github.com/spf13/cobra"
)

// configPath holds the path to the main configuration YAML file.
// It's passed via the `--config` or `-c` flag.
var configPath string

// statePath is the path to the advisory state file. It only records which
// font releases have been installed; no stage's correctness depends on it.
var statePath = "state.json"

// force skips the dotfiles confirmation prompt (`--force` / `-f`).
var force bool

// changeShell opts in to switching the login shell to the Homebrew-provided
// bash after package installation (`--change-shell`).
var changeShell bool

// runCmd is the top-level command for the full bootstrap: platform probe,
// Homebrew bootstrap, package install, dotfiles sync, settings, fixups.
// Positional arguments after the flags are passed through verbatim as extra
// arguments to every `brew install` invocation.
var runCmd = &cobra.Command{
	Use:   "run [-- extra brew install args]",
	Short: "Run the full bootstrap (packages, dotfiles, settings, fixups)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		// Probe once; the profile is threaded into every stage rather than
		// re-queried so a single run can never see two different prefixes.
		profile := platform.Resolve()
		ctx := platform.NewRunContext(force, changeShell, args)
		st := state.Load(statePath)

		orch := &orchestrator.Orchestrator{
			Config:  cfg,
			Profile: profile,
			Ctx:     ctx,
			Runner:  execx.System{},
			State:   st,
			Stdin:   os.Stdin,
		}
		runErr := orch.Run()

		// Save whatever state accumulated even on a failed run; the state is
		// advisory and saving it never masks the failure.
		state.Save(statePath, st)
		return runErr
	},
}

// runPackagesCmd installs only the package manifest (plus the Homebrew
// bootstrap if the binary is missing).
var runPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Install only the Homebrew package manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		profile := platform.Resolve()

		inst := brew.Installer{Profile: profile, Runner: execx.System{}}
		if err := inst.EnsureBrew(); err != nil {
			return err
		}
		_, err = inst.Install(cfg.Packages, args)
		return err
	},
}

// runDotfilesCmd syncs only the dotfiles tree into the home directory.
var runDotfilesCmd = &cobra.Command{
	Use:   "dotfiles",
	Short: "Sync only the dotfiles tree into the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		ctx := platform.NewRunContext(force, false, nil)
		_, err = dotfiles.Sync(cfg.Dotfiles, ctx, os.Stdin)
		return err
	},
}

// runSettingsCmd applies only the macOS defaults settings.
var runSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Apply only the macOS defaults settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		st := state.Load(statePath)

		applier := defaults.Applier{Runner: execx.System{}}
		applier.Apply(cfg.Settings, st)
		applier.RestartAffected()
		applier.RebuildLaunchServices()

		state.Save(statePath, st)
		return nil
	},
}

// runFontsCmd installs only the font manifest.
var runFontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "Install only the font manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		st := state.Load(statePath)

		fonts.Sync(cfg.Fonts, st, fonts.UserFontDir())

		state.Save(statePath, st)
		return nil
	},
}

// init sets up CLI flags and adds subcommands to the root command.
func init() {
	// Global flag for specifying the main manifest path
	runCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	runCmd.Flags().BoolVarP(&force, "force", "f", false, "Sync dotfiles without asking for confirmation")
	runCmd.Flags().BoolVar(&changeShell, "change-shell", false, "Switch the login shell to the Homebrew bash")
	runDotfilesCmd.Flags().BoolVarP(&force, "force", "f", false, "Sync dotfiles without asking for confirmation")

	// Add subcommands for more granular control
	runCmd.AddCommand(runPackagesCmd)
	runCmd.AddCommand(runDotfilesCmd)
	runCmd.AddCommand(runSettingsCmd)
	runCmd.AddCommand(runFontsCmd)
	// Register the `run` command with the root command
	rootCmd.AddCommand(runCmd)
}
