// Package execx is the single seam between this tool and the external
// binaries it drives (brew, defaults, killall, sudo, chsh). Every component
// takes a Runner parameter so tests can observe exactly which commands a
// stage would have executed without touching the machine.
package execx

import (
	"os/exec"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	// Run executes name with args and returns combined stdout/stderr.
	Run(name string, args ...string) ([]byte, error)
	// LookPath reports where name resolves on PATH, or an error if it doesn't.
	LookPath(name string) (string, error)
}

// System is the real Runner backed by os/exec.
type System struct{}

// Run executes the command and captures both stdout and stderr, matching how
// output is logged alongside errors throughout this tool.
func (System) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// LookPath defers to exec.LookPath.
func (System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
