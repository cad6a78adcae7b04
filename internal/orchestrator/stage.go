package orchestrator

import "fmt"

// Stage enumerates the fixed run sequence. Transitions are validated so the
// sequencing rules live in one place instead of being implied by call order.
type Stage int

const (
	StageStart Stage = iota
	StageProbePlatform
	StageEnsurePackageManager
	StageInstallPackages
	StageSyncDotfiles
	StageApplySettings
	StagePostFixups
	StageDone
	StageFailed
)

// String returns the banner name for the stage.
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageProbePlatform:
		return "probe platform"
	case StageEnsurePackageManager:
		return "ensure package manager"
	case StageInstallPackages:
		return "install packages"
	case StageSyncDotfiles:
		return "sync dotfiles"
	case StageApplySettings:
		return "apply settings"
	case StagePostFixups:
		return "post fixups"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the stage ends the run.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// allowedNext encodes the orchestrator's transition rules. Failure is only
// reachable from the two package-manager stages: everything after them is
// independently idempotent and runs regardless of upstream partial failures.
func allowedNext(from, to Stage) bool {
	switch from {
	case StageStart:
		return to == StageProbePlatform
	case StageProbePlatform:
		return to == StageEnsurePackageManager
	case StageEnsurePackageManager:
		return to == StageInstallPackages || to == StageFailed
	case StageInstallPackages:
		return to == StageSyncDotfiles || to == StageFailed
	case StageSyncDotfiles:
		return to == StageApplySettings
	case StageApplySettings:
		return to == StagePostFixups
	case StagePostFixups:
		return to == StageDone
	default:
		return false
	}
}

// transitionError builds the error reported on an out-of-order transition.
func transitionError(from, to Stage) error {
	return fmt.Errorf("disallowed stage transition: %s -> %s", from, to)
}
