package systems_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cadscene/engine/systems"
)

func TestNewJobSystem_Validation(t *testing.T) {
	_, err := systems.NewJobSystem(0, 1)
	assert.ErrorIs(t, err, systems.ErrNoWorkers)

	_, err = systems.NewJobSystem(1, -1)
	assert.ErrorIs(t, err, systems.ErrNegativeChannelSize)
}

func TestJobSystem_RunsEveryJob(t *testing.T) {
	js, err := systems.NewJobSystem(4, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, js.Workers())

	var (
		completed atomic.Int32
		failed    atomic.Int32
		callbacks atomic.Int32
		mu        sync.Mutex
		failures  []error
	)
	boom := errors.New("boom")

	for i := 0; i < 20; i++ {
		i := i
		err := js.Submit(systems.JobTask{
			Name: "job",
			Run: func() error {
				if i%5 == 0 {
					return boom
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure: func(err error) {
				failed.Add(1)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			},
			OnCompletionCallback: func() { callbacks.Add(1) },
		})
		require.NoError(t, err)
	}
	require.NoError(t, js.Shutdown())

	assert.EqualValues(t, 16, completed.Load())
	assert.EqualValues(t, 4, failed.Load())
	assert.EqualValues(t, 20, callbacks.Load())
	for _, err := range failures {
		assert.ErrorIs(t, err, boom)
	}
}

func TestJobSystem_NilRunFails(t *testing.T) {
	js, err := systems.NewJobSystem(1, 1)
	require.NoError(t, err)

	var got error
	require.NoError(t, js.Submit(systems.JobTask{OnFailure: func(err error) { got = err }}))
	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, got, systems.ErrNilJob)
}

func TestJobSystem_ShutdownTwice(t *testing.T) {
	js, err := systems.NewJobSystem(2, 0)
	require.NoError(t, err)
	assert.NoError(t, js.Shutdown())
	assert.NoError(t, js.Shutdown())
}

func TestJobSystem_SubmitAfterShutdown(t *testing.T) {
	js, err := systems.NewJobSystem(1, 1)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())

	assert.ErrorIs(t, js.Submit(systems.JobTask{Run: func() error { return nil }}), systems.ErrJobSystemClosed)
}

func TestJobSystem_SubmitContextGivesUpWhenQueueIsFull(t *testing.T) {
	js, err := systems.NewJobSystem(1, 0)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, js.Submit(systems.JobTask{Run: func() error {
		close(started)
		<-release
		return nil
	}}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = js.SubmitContext(ctx, systems.JobTask{Run: func() error { return nil }})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, js.Shutdown())
}
