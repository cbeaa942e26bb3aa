package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestart(t *testing.T) {
	sup, _ := newTestSupervisor(t)

	t.Run("restart from stopped starts the server", func(t *testing.T) {
		res := sup.Restart()
		require.NoError(t, res.Err, res.Message)
		assert.True(t, sup.IsRunning())
	})

	t.Run("restart while running yields a fresh process", func(t *testing.T) {
		require.True(t, sup.IsRunning())
		oldPID := sup.PID()
		require.NotZero(t, oldPID)

		res := sup.Restart()
		require.NoError(t, res.Err, res.Message)
		assert.True(t, sup.IsRunning())
		assert.NotEqual(t, oldPID, sup.PID())
	})

	t.Run("restarted process accepts commands", func(t *testing.T) {
		res := sup.SendCommand("say back")
		assert.NoError(t, res.Err)
	})

	res := sup.Kill()
	require.NoError(t, res.Err)
}

func TestRestartSurvivesConsoleReader(t *testing.T) {
	sup, _ := newTestSupervisor(t)

	res := sup.Start()
	require.NoError(t, res.Err, res.Message)
	first := sup.Stream()
	require.NotNil(t, first)

	res = sup.Restart()
	require.NoError(t, res.Err, res.Message)
	defer sup.Kill()

	// Stream identity must change so a reader notices the restart.
	second := sup.Stream()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
}

func TestStopTimesOutOnStubbornProcess(t *testing.T) {
	requireUnix(t)
	sup, set := newTestSupervisor(t)
	// A stop command the fake server does not recognize leaves it running.
	set.stopCmd = "noop"
	sup.opts.Settings = set

	res := sup.Start()
	require.NoError(t, res.Err, res.Message)
	defer sup.Kill()

	start := time.Now()
	res = sup.Stop()
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrTimeout)
	assert.Equal(t, StatusWarning, res.Status)
	assert.GreaterOrEqual(t, time.Since(start), 9*time.Second)
	assert.True(t, sup.IsRunning())
}
