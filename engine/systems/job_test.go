package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var completed, failed, finished int32
	results := make([]int, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		idx := i
		js.Submit(JobTask{
			InputParams: idx,
			OnStart: func(params interface{}) (interface{}, error) {
				n := params.(int)
				if n%5 == 0 {
					return nil, errors.New("boom")
				}
				return n * n, nil
			},
			OnComplete: func(result interface{}) {
				results[idx] = result.(int)
				atomic.AddInt32(&completed, 1)
			},
			OnFailure: func(err error) {
				atomic.AddInt32(&failed, 1)
			},
			OnCompletionCallback: func() {
				atomic.AddInt32(&finished, 1)
				wg.Done()
			},
		})
	}
	wg.Wait()
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(8), completed)
	assert.Equal(t, int32(2), failed)
	assert.Equal(t, int32(10), finished)
	assert.Equal(t, 81, results[9])
}

func TestSubmitAfterShutdownIsRejected(t *testing.T) {
	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())

	ran := false
	assert.NotPanics(t, func() {
		err = js.Submit(JobTask{
			OnStart: func(interface{}) (interface{}, error) {
				ran = true
				return nil, nil
			},
		})
	})
	assert.ErrorIs(t, err, ErrJobSystemShutdown)
	assert.False(t, ran)
	assert.NotPanics(t, func() { js.AddWorkNonBlocking(JobTask{}) })
}
