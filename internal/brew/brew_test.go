package brew

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bootstrap-machine/internal/config"
	"bootstrap-machine/internal/execx"
	"bootstrap-machine/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempProfile returns a profile rooted in a temp dir with its bin created.
func tempProfile(t *testing.T) platform.Profile {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0755))
	return platform.Profile{Arch: "arm64", PackageRoot: root}
}

func TestEnsureBrewSkipsWhenPresent(t *testing.T) {
	profile := tempProfile(t)
	require.NoError(t, os.WriteFile(profile.Brew(), []byte("#!/bin/bash\n"), 0755))

	fake := &execx.Fake{}
	inst := Installer{Profile: profile, Runner: fake}

	require.NoError(t, inst.EnsureBrew())
	assert.Empty(t, fake.Calls(), "no bootstrap should run when brew exists")
}

func TestEnsureBrewBootstrapsWhenMissing(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	inst := Installer{Profile: profile, Runner: fake}

	require.NoError(t, inst.EnsureBrew())

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/bin/bash", calls[0].Name)
	assert.Contains(t, calls[0].Args[1], installerURL)
}

func TestEnsureBrewBootstrapFailureIsFatal(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	fake.Stub("/bin/bash -c curl -fsSL "+installerURL+" | /bin/bash", []byte("no network"), errors.New("exit status 1"))

	inst := Installer{Profile: profile, Runner: fake}
	assert.Error(t, inst.EnsureBrew())
}

func TestInstallRunsManagerVerbsInOrder(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	inst := Installer{Profile: profile, Runner: fake}

	pkgs := []config.Package{
		{Name: "wget", Category: "network"},
		{Name: "git", Category: "dev"},
	}
	count, err := inst.Install(pkgs, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	brewBin := profile.Brew()
	assert.Equal(t, []string{
		brewBin + " update",
		brewBin + " upgrade",
		brewBin + " install wget",
		brewBin + " install git",
		brewBin + " cleanup",
	}, fake.CommandLines())
}

func TestInstallPassesExtraArgsThrough(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	inst := Installer{Profile: profile, Runner: fake}

	_, err := inst.Install([]config.Package{{Name: "firefox"}}, []string{"--cask"})
	require.NoError(t, err)

	assert.Contains(t, fake.CommandLines(), profile.Brew()+" install firefox --cask")
}

func TestInstallAbortsOnFirstFailure(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	fake.Stub(profile.Brew()+" install wget", []byte("boom"), errors.New("exit status 1"))

	inst := Installer{Profile: profile, Runner: fake}
	pkgs := []config.Package{{Name: "wget"}, {Name: "git"}}

	count, err := inst.Install(pkgs, nil)
	require.Error(t, err)
	assert.Equal(t, 0, count)

	// Strict propagation: nothing after the failing invocation runs.
	lines := fake.CommandLines()
	assert.NotContains(t, lines, profile.Brew()+" install git")
	assert.NotContains(t, lines, profile.Brew()+" cleanup")
}

func TestCoreutilsInstallLinksSha256sum(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	inst := Installer{Profile: profile, Runner: fake}

	_, err := inst.Install([]config.Package{{Name: "coreutils", Category: "gnu"}}, nil)
	require.NoError(t, err)

	link := filepath.Join(profile.Bin(), "sha256sum")
	target, err := os.Readlink(link)
	require.NoError(t, err, "sha256sum should be a symlink")
	assert.Equal(t, "gsha256sum", target)
}

func TestCoreutilsLinkIsIdempotent(t *testing.T) {
	profile := tempProfile(t)
	fake := &execx.Fake{}
	inst := Installer{Profile: profile, Runner: fake}

	pkgs := []config.Package{{Name: "coreutils"}}
	_, err := inst.Install(pkgs, nil)
	require.NoError(t, err)

	// Second run sees the existing link and leaves it untouched.
	_, err = inst.Install(pkgs, nil)
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(profile.Bin(), "sha256sum"))
	require.NoError(t, err)
	assert.Equal(t, "gsha256sum", target)
}

func TestExistingSha256sumIsNotReplaced(t *testing.T) {
	profile := tempProfile(t)
	existing := filepath.Join(profile.Bin(), "sha256sum")
	require.NoError(t, os.WriteFile(existing, []byte("real binary"), 0755))

	inst := Installer{Profile: profile, Runner: &execx.Fake{}}
	_, err := inst.Install([]config.Package{{Name: "coreutils"}}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "real binary", string(data))
}
