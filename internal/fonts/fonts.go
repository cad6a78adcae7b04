package fonts

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/logger"
	"bootstrap-machine/internal/state"
)

// archiveSuffixes are the release-asset formats Extract understands.
var archiveSuffixes = []string{".zip", ".7z", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz"}

// UserFontDir returns the per-user font directory on macOS.
func UserFontDir() string {
	return filepath.Join(os.Getenv("HOME"), "Library", "Fonts")
}

// Sync installs every manifest font whose name+tag is not already recorded in
// the state, copying the font files into dir. The whole stage is best-effort:
// a font that fails to download or extract is logged and the rest proceed.
// Returns the number of fonts installed this run.
func Sync(fonts []config.Font, st *state.State, dir string) int {
	installed := 0
	for _, f := range fonts {
		if prev, ok := st.Fonts[f.Name]; ok && prev.Tag == f.Tag {
			logger.Info("[INFO] Font %s %s already installed. Skipping.\n", f.Name, f.Tag)
			continue
		}
		if f.Source != "github" {
			logger.Warn("[WARN] Unknown font source %q for %s. Skipping.\n", f.Source, f.Name)
			continue
		}

		logger.Info("[INFO] Installing font %s %s...\n", f.Name, f.Tag)
		files, err := install(f, dir)
		if err != nil {
			logger.Error("[ERROR] Failed to install font %s: %v\n", f.Name, err)
			continue
		}

		st.Fonts[f.Name] = state.FontState{Name: f.Name, Tag: f.Tag, Files: files}
		logger.Info("[INFO] Installed %d font files for %s\n", len(files), f.Name)
		installed++
	}
	return installed
}

// githubRelease is the subset of the GitHub release JSON response we read.
type githubRelease struct {
	TagName string `json:"tag_name"` // The release tag (e.g., v3.2.1)
	Assets  []struct {
		Name               string `json:"name"`                 // Asset filename
		BrowserDownloadURL string `json:"browser_download_url"` // Direct download URL for the asset
	} `json:"assets"`
}

// install resolves the release asset, downloads and extracts it, and copies
// every .ttf/.otf it contains into dir. Returns the installed file paths.
func install(f config.Font, dir string) ([]string, error) {
	assetURL, err := resolveAssetURL(f)
	if err != nil {
		return nil, err
	}

	archive := filepath.Join(os.TempDir(), path.Base(assetURL))
	if err := downloadFile(assetURL, archive); err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	workDir, err := os.MkdirTemp("", "font-"+f.Name+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := Extract(archive, workDir); err != nil {
		return nil, err
	}

	return collectFontFiles(workDir, dir)
}

// resolveAssetURL fetches the release metadata and picks the first asset
// whose name contains the font name and carries a supported archive suffix.
func resolveAssetURL(f config.Font) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/tags/%s", f.Repo, f.Tag)
	logger.Debug("[DEBUG] Fetching GitHub release from URL: %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("HTTP GET error fetching release for %s@%s: %w", f.Name, f.Tag, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("GitHub release fetch failed for %s@%s: HTTP status %d", f.Name, f.Tag, resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode GitHub release JSON for %s@%s: %w", f.Name, f.Tag, err)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))

	want := strings.ToLower(f.Name)
	for _, asset := range release.Assets {
		name := strings.ToLower(asset.Name)
		if !strings.Contains(name, want) {
			continue
		}
		for _, suffix := range archiveSuffixes {
			if strings.HasSuffix(name, suffix) {
				logger.Debug("[DEBUG] Found matching asset: %s\n", asset.Name)
				return asset.BrowserDownloadURL, nil
			}
		}
	}
	return "", fmt.Errorf("no archive asset matching %q in release %s", f.Name, release.TagName)
}

// downloadFile downloads the content located at the specified URL and saves
// it to the destination path.
func downloadFile(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != 200 {
		return fmt.Errorf("download of %s failed: HTTP status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close destination file: %v\n", cerr)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write response to file: %w", err)
	}

	logger.Debug("[DEBUG] Downloaded font archive to: %s\n", destPath)
	return nil
}

// collectFontFiles walks the extracted tree and copies every font file into
// destDir, returning the destination paths.
func collectFontFiles(root, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create font dir %s: %w", destDir, err)
	}

	var installed []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".ttf" && ext != ".otf" {
			return nil
		}

		dst := filepath.Join(destDir, filepath.Base(p))
		if err := copyFile(p, dst); err != nil {
			return err
		}
		logger.Debug("[DEBUG] Installed font file %s\n", dst)
		installed = append(installed, dst)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(installed) == 0 {
		return nil, fmt.Errorf("no .ttf or .otf files found in the release archive")
	}
	return installed, nil
}

// copyFile copies src to dst with font-file permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
