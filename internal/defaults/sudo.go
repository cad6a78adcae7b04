package defaults

import (
	"context"
	"os"
	"time"

	"bootstrap-machine/internal/logger"
)

// KeepSudoAlive asks for the sudo timestamp up front, then refreshes it on a
// ticker for as long as settings are being applied. The loop is an explicit
// cancellable task, not a detached process: it exits when ctx is cancelled,
// and as a liveness check it also exits if the process gets reparented (the
// original parent died mid-run).
func (a Applier) KeepSudoAlive(ctx context.Context, interval time.Duration) {
	output, err := a.Runner.Run("sudo", "-v")
	if err != nil {
		// Some entries want sudo, most don't. Without a timestamp those
		// entries fail individually and are reported by Apply.
		logger.Warn("[WARN] Could not acquire sudo timestamp: %v\nOutput: %s\n", err, output)
		return
	}

	parent := os.Getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != parent {
					logger.Debug("[DEBUG] Parent process gone. Stopping sudo keep-alive.\n")
					return
				}
				if _, err := a.Runner.Run("sudo", "-n", "-v"); err != nil {
					logger.Debug("[DEBUG] sudo keep-alive refresh failed: %v\n", err)
				}
			}
		}
	}()
}
