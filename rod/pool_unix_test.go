//go:build integration && !windows

package rod_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/chatshare/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	pool := rod.NewPool()

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	lease.Release(false)

	pid := pool.LauncherPID()
	require.NotZero(t, pid, "launcher PID should be set")

	// Signal 0 checks if the process exists without affecting it
	err = syscall.Kill(pid, syscall.Signal(0))
	require.NoError(t, err, "launcher process should be running before Close()")

	require.NoError(t, pool.Close())

	// Give the OS a moment to clean up the process
	time.Sleep(100 * time.Millisecond)

	err = syscall.Kill(pid, syscall.Signal(0))
	assert.Error(t, err, "launcher process should be terminated after Close()")
}
