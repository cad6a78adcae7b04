package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTransitions(t *testing.T) {
	allowed := [][2]Stage{
		{StageStart, StageProbePlatform},
		{StageProbePlatform, StageEnsurePackageManager},
		{StageEnsurePackageManager, StageInstallPackages},
		{StageEnsurePackageManager, StageFailed},
		{StageInstallPackages, StageSyncDotfiles},
		{StageInstallPackages, StageFailed},
		{StageSyncDotfiles, StageApplySettings},
		{StageApplySettings, StagePostFixups},
		{StagePostFixups, StageDone},
	}
	for _, tr := range allowed {
		assert.True(t, allowedNext(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}
}

func TestDisallowedTransitions(t *testing.T) {
	disallowed := [][2]Stage{
		{StageStart, StageInstallPackages},
		{StageProbePlatform, StageFailed},
		{StageSyncDotfiles, StageFailed},          // declining sync is never a failure
		{StageApplySettings, StageFailed},         // settings problems are logged, not fatal
		{StageInstallPackages, StageApplySettings}, // sync runs even after install
		{StageDone, StageStart},
		{StageFailed, StageStart},
	}
	for _, tr := range disallowed {
		assert.False(t, allowedNext(tr[0], tr[1]), "%s -> %s should be rejected", tr[0], tr[1])
	}
}

func TestTerminalStages(t *testing.T) {
	assert.True(t, StageDone.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageInstallPackages.Terminal())
	assert.False(t, StageStart.Terminal())
}

func TestStageStrings(t *testing.T) {
	assert.Equal(t, "install packages", StageInstallPackages.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
