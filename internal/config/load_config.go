package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads the main config.yaml file and the four referenced
// sub-manifests: packages.yaml, settings.yaml, dotfiles.yaml, and fonts.yaml.
// Sub-file paths are resolved relative to the main config's directory, so a
// checkout can be invoked from anywhere. It returns a populated Config struct.
func LoadConfig(configFile string) (Config, error) {
	// mainConfig holds the paths to the packages, settings, dotfiles, and
	// fonts manifest files
	mainConfig := struct {
		Config struct {
			PackagesFile string `yaml:"packages_file"`
			SettingsFile string `yaml:"settings_file"`
			DotfilesFile string `yaml:"dotfiles_file"`
			FontsFile    string `yaml:"fonts_file"`
		} `yaml:"config"`
	}{}

	// Read and parse the main config.yaml which holds metadata (paths to other YAMLs)
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", configFile, err)
	}
	if err := yaml.Unmarshal(raw, &mainConfig); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal %s: %w", configFile, err)
	}

	baseDir := filepath.Dir(configFile)

	// ----- Load packages.yaml -----
	var packagesWrapper struct {
		Packages []Package `yaml:"packages"`
	}
	if err := loadInto(baseDir, mainConfig.Config.PackagesFile, &packagesWrapper); err != nil {
		return Config{}, err
	}

	// ----- Load settings.yaml -----
	// This expects the structure: settings: { macos: [ {domain, key, value, type, policy}, ... ] }
	var settingsWrapper struct {
		Settings struct {
			MacOS []Setting `yaml:"macos"`
		} `yaml:"settings"`
	}
	if err := loadInto(baseDir, mainConfig.Config.SettingsFile, &settingsWrapper); err != nil {
		return Config{}, err
	}

	// Normalize an empty policy to apply so manifests only annotate exceptions.
	for i := range settingsWrapper.Settings.MacOS {
		if settingsWrapper.Settings.MacOS[i].Policy == "" {
			settingsWrapper.Settings.MacOS[i].Policy = PolicyApply
		}
	}

	// ----- Load dotfiles.yaml -----
	var dotfilesWrapper struct {
		Dotfiles SyncRule `yaml:"dotfiles"`
	}
	if err := loadInto(baseDir, mainConfig.Config.DotfilesFile, &dotfilesWrapper); err != nil {
		return Config{}, err
	}

	// The sync source is relative to the manifest too; the destination
	// defaults to the user's home directory.
	rule := dotfilesWrapper.Dotfiles
	if rule.Source != "" && !filepath.IsAbs(rule.Source) {
		rule.Source = filepath.Join(baseDir, rule.Source)
	}
	if rule.Dest == "" {
		rule.Dest = os.Getenv("HOME")
	}

	// ----- Load fonts.yaml -----
	var fontsWrapper struct {
		Fonts []Font `yaml:"fonts"`
	}
	if err := loadInto(baseDir, mainConfig.Config.FontsFile, &fontsWrapper); err != nil {
		return Config{}, err
	}

	// Assemble and return the full config object
	return Config{
		Packages: packagesWrapper.Packages,
		Settings: settingsWrapper.Settings.MacOS,
		Dotfiles: rule,
		Fonts:    fontsWrapper.Fonts,
	}, nil
}

// loadInto reads one referenced manifest and unmarshals it into out. A file
// left unset in the main config is not an error: the corresponding stage
// simply has nothing to do.
func loadInto(baseDir, file string, out any) error {
	if file == "" {
		return nil
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, file)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", file, err)
	}
	return nil
}
