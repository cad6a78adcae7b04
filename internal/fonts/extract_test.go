package fonts

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err = tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fonts.zip")
	writeZip(t, archive, map[string]string{
		"JetBrainsMono-Regular.ttf": "ttf bytes",
		"OTF/JetBrainsMono.otf":     "otf bytes",
	})

	dest := t.TempDir()
	require.NoError(t, Extract(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "JetBrainsMono-Regular.ttf"))
	require.NoError(t, err)
	assert.Equal(t, "ttf bytes", string(data))

	_, err = os.Stat(filepath.Join(dest, "OTF", "JetBrainsMono.otf"))
	assert.NoError(t, err)
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fonts.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"mono/Regular.ttf": "regular",
		"mono/Bold.ttf":    "bold",
	})

	dest := t.TempDir()
	require.NoError(t, Extract(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "mono", "Bold.ttf"))
	require.NoError(t, err)
	assert.Equal(t, "bold", string(data))
}

func TestExtractRejectsEntriesOutsideDest(t *testing.T) {
	dir := t.TempDir()
	zipArchive := filepath.Join(dir, "evil.zip")
	writeZip(t, zipArchive, map[string]string{
		"../escape.ttf": "nope",
	})

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(dest, 0755))

	err := Extract(zipArchive, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes extraction dir")

	_, err = os.Stat(filepath.Join(filepath.Dir(dest), "escape.ttf"))
	assert.True(t, os.IsNotExist(err))

	tarArchive := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, tarArchive, map[string]string{
		"../../escape.ttf": "nope",
	})

	err = Extract(tarArchive, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes extraction dir")
}

func TestExtractUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fonts.rar")
	require.NoError(t, os.WriteFile(archive, []byte("whatever"), 0644))

	err := Extract(archive, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}
