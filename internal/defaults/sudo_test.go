package defaults

import (
	"context"
	"errors"
	"testing"
	"time"

	"bootstrap-machine/internal/execx"

	"github.com/stretchr/testify/assert"
)

func TestKeepSudoAliveRefreshesUntilCancelled(t *testing.T) {
	fake := &execx.Fake{}
	applier := Applier{Runner: fake}

	ctx, cancel := context.WithCancel(context.Background())
	applier.KeepSudoAlive(ctx, 5*time.Millisecond)

	// The initial timestamp acquisition happens synchronously.
	assert.Contains(t, fake.CommandLines(), "sudo -v")

	// At least one refresh tick fires before we cancel.
	assert.Eventually(t, func() bool {
		for _, line := range fake.CommandLines() {
			if line == "sudo -n -v" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	cancel()
	// After cancellation the loop stops: the call count settles.
	time.Sleep(20 * time.Millisecond)
	settled := len(fake.Calls())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, len(fake.Calls()))
}

func TestKeepSudoAliveGivesUpWithoutTimestamp(t *testing.T) {
	fake := &execx.Fake{}
	fake.Stub("sudo -v", []byte("sudo: a password is required"), errors.New("exit status 1"))
	applier := Applier{Runner: fake}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	applier.KeepSudoAlive(ctx, time.Millisecond)

	// No background loop was started; only the failed acquisition happened.
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, fake.Calls(), 1)
}
