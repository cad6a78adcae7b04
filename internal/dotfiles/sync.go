package dotfiles

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/logger"
	"bootstrap-machine/internal/platform"
)

// Result describes how the sync stage ended. Declining or skipping the sync
// is a normal outcome, not an error; the orchestrator continues either way.
type Result int

const (
	// Synced means the tree was copied into the destination.
	Synced Result = iota
	// Declined means the user answered the confirmation prompt with no.
	Declined
	// SkippedNoTTY means there was no terminal to ask on and --force was not
	// given, so the stage backed off without blocking.
	SkippedNoTTY
	// SkippedNoSource means the manifest has no dotfiles source to copy
	// from, so there was nothing to do.
	SkippedNoSource
)

// String returns a human-readable name for the result.
func (r Result) String() string {
	switch r {
	case Synced:
		return "synced"
	case Declined:
		return "declined"
	case SkippedNoTTY:
		return "skipped (no tty)"
	case SkippedNoSource:
		return "skipped (no source configured)"
	default:
		return "unknown"
	}
}

// Sync copies the dotfiles tree described by rule into the destination,
// honoring the confirmation gates:
//
//   - force: sync unconditionally
//   - interactive: ask a single y/N question on in, anything but yes declines
//   - neither: print a notice and return without reading in or touching the
//     destination (never block on input that will never arrive)
//
// The copy overwrites existing files in place but leaves their mode bits
// untouched, so a chmod the user made on a synced file survives re-runs.
func Sync(rule config.SyncRule, ctx platform.RunContext, in io.Reader) (Result, error) {
	if rule.Source == "" {
		logger.Info("[INFO] No dotfiles source configured. Nothing to sync.\n")
		return SkippedNoSource, nil
	}

	if !ctx.Force {
		if !ctx.Interactive {
			logger.Info("[INFO] Not a terminal and --force not given. Skipping dotfiles sync.\n")
			return SkippedNoTTY, nil
		}
		if !confirm(in) {
			logger.Info("[INFO] Dotfiles sync declined.\n")
			return Declined, nil
		}
	}

	if err := copyTree(rule); err != nil {
		return Synced, err
	}
	logger.Info("[INFO] Dotfiles synced from %s to %s\n", rule.Source, rule.Dest)
	return Synced, nil
}

// confirm asks the single overwrite question and reads one answer from in.
// Only an explicit yes proceeds; empty input, read errors, and everything
// else decline.
func confirm(in io.Reader) bool {
	fmt.Print("This may overwrite existing files in your home directory. Continue? [y/N]: ")
	var response string
	if _, err := fmt.Fscanln(in, &response); err != nil && err.Error() != "unexpected newline" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// copyTree walks the source and copies every non-excluded regular file,
// preserving relative structure. Excluded directories are pruned whole so
// their contents are never even visited.
func copyTree(rule config.SyncRule) error {
	return filepath.WalkDir(rule.Source, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(rule.Source, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if Excluded(rel, rule.Exclude) {
			logger.Debug("[DEBUG] Excluded from sync: %s\n", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			logger.Debug("[DEBUG] Skipping symlink: %s\n", rel)
			return nil
		}

		dst := filepath.Join(rule.Dest, rel)
		if err := copyFile(p, dst); err != nil {
			return fmt.Errorf("failed to sync %s: %w", rel, err)
		}
		logger.Debug("[DEBUG] Synced %s\n", rel)
		return nil
	})
}

// Excluded reports whether a relative path matches any exclude glob. A
// pattern matches when it matches the whole relative path or any single
// segment of it, so "*.md" excludes docs anywhere in the tree and ".git"
// excludes the directory wherever it appears.
func Excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	segments := strings.Split(rel, "/")
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		for _, seg := range segments {
			if ok, _ := path.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}

// copyFile copies src over dst. When dst already exists its mode bits are
// left alone; a new file gets the source's mode. Parent directories are
// created as needed.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	_, statErr := os.Stat(dst)
	existed := statErr == nil

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	// New files take the source's mode; existing files keep whatever mode
	// the user set on them.
	if !existed {
		if stat, err2 := os.Stat(src); err2 == nil {
			err = os.Chmod(dst, stat.Mode())
		}
	}
	return err
}
