package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"os"            // For file system operations like reading and writing files

	"bootstrap-machine/internal/logger"
)

// SettingState records the value last written to a defaults domain/key pair.
// It is purely advisory: the applier writes every apply entry regardless and
// only uses this to log that a value was unchanged since the previous run.
type SettingState struct {
	Domain string `json:"domain"` // The domain string, e.g., "com.apple.finder"
	Key    string `json:"key"`    // The key string within that domain, e.g., "AppleShowAllFiles"
	Value  string `json:"value"`  // The value last written to that key, stored as string
}

// FontState records a font release that was installed on this machine, so a
// re-run can skip re-downloading an identical release archive.
type FontState struct {
	Name  string   `json:"name"`  // Font name (e.g., "JetBrainsMono")
	Tag   string   `json:"tag"`   // Release tag the files came from
	Files []string `json:"files"` // List of installed font file paths
}

// State holds the advisory run state. Losing this file costs nothing but
// redundant work: every stage converges to the same result without it.
type State struct {
	Settings map[string]SettingState `json:"settings"` // Map from "domain:key" string to SettingState
	Fonts    map[string]FontState    `json:"fonts"`    // Map from font name to its FontState
}

// Load loads the saved state from a JSON file at the given path.
// If the file does not exist or cannot be read, it returns a new empty State.
// It ensures the maps are non-nil to prevent nil pointer issues.
func Load(path string) *State {
	file, err := os.ReadFile(path)
	if err != nil {
		// File missing or unreadable: start from an empty state
		return &State{
			Settings: make(map[string]SettingState),
			Fonts:    make(map[string]FontState),
		}
	}

	var st State
	_ = json.Unmarshal(file, &st)

	// Defensive: Ensure maps are initialized if JSON contained null for these fields
	if st.Settings == nil {
		st.Settings = make(map[string]SettingState)
	}
	if st.Fonts == nil {
		st.Fonts = make(map[string]FontState)
	}

	return &st
}

// Save writes the given State to a JSON file at the given path.
// It pretty-prints the JSON with indentation for readability.
// Errors during marshalling or writing are logged but not propagated.
func Save(path string, st *State) {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal state: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.WriteFile(path, file, 0644); err != nil {
		logger.Error("[ERROR] Failed to write state file %s: %v\n", path, err)
	}
}
