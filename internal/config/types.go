package config

// Package represents a single Homebrew package (formula or cask) to install.
// - Name: the name passed to `brew install`.
// - Category: informational grouping used only for log readability.
type Package struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// Policy decides whether a setting entry is executed or skipped, and why.
type Policy string

const (
	// PolicyApply executes the defaults write. The empty string normalizes
	// to this so manifests only annotate the exceptions.
	PolicyApply Policy = "apply"
	// PolicyDeprecated marks entries with no observable effect on current
	// macOS versions. Kept in the manifest for the record, never executed.
	PolicyDeprecated Policy = "skip-deprecated"
	// PolicySIP marks entries System Integrity Protection rejects outright.
	// Attempting them would only produce a benign error.
	PolicySIP Policy = "skip-sip"
	// PolicyInsecure marks entries that would weaken the security posture.
	// Disabled unless the operator re-enables them in the manifest.
	PolicyInsecure Policy = "skip-insecure"
)

// Setting represents a macOS `defaults` system setting.
// - Domain: macOS domain (e.g., com.apple.finder).
// - Key: Specific setting key.
// - Value: Desired setting value as a string.
// - Type: Value type ("bool", "int", "string", "float").
// - Policy: apply or one of the skip reasons; empty means apply.
type Setting struct {
	Domain string `yaml:"domain"`
	Key    string `yaml:"key"`
	Value  string `yaml:"value"`
	Type   string `yaml:"type"`
	Policy Policy `yaml:"policy"`
}

// SyncRule describes the dotfiles sync: everything under Source not matching
// an exclude glob is copied into Dest, preserving relative structure.
// Dest defaults to the user's home directory when empty.
type SyncRule struct {
	Source  string   `yaml:"source"`
	Dest    string   `yaml:"dest"`
	Exclude []string `yaml:"exclude"`
}

// Font represents a downloadable font archive from a GitHub release.
type Font struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"` // Only "github" supported
	Repo    string `yaml:"repo"`   // GitHub repo, e.g., ryanoasis/nerd-fonts
	Tag     string `yaml:"tag"`    // GitHub release tag, e.g., v3.2.1
}

// Config is the top-level structure returned after loading all YAML manifests.
type Config struct {
	Packages []Package
	Settings []Setting
	Dotfiles SyncRule
	Fonts    []Font
}
