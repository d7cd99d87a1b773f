package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/qtk/engine/core"
)

/**
 * @brief Describes a job to be run on a worker.
 */
type JobTask struct {
	/** @brief Invoked on the worker with InputParams. Required. */
	OnStart func(params interface{}) (interface{}, error)
	/** @brief Invoked with the result when OnStart succeeds. Optional. */
	OnComplete func(result interface{})
	/** @brief Invoked with the error when OnStart fails. Optional. */
	OnFailure func(err error)
	/** @brief Invoked after OnComplete or OnFailure. Optional. */
	OnCompletionCallback func()
	/** @brief Data passed to OnStart. */
	InputParams interface{}
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	// guards closed against sends racing with Shutdown
	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemShutdown = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError(err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(result)
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Shuts the job system down, waiting for queued jobs to finish.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if !js.closed {
		js.closed = true
		close(js.jobQueue)
	}
	js.mu.Unlock()
	js.wg.Wait()
	return nil
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
// Jobs arriving after Shutdown are dropped with a warning.
func (js *JobSystem) AddWorkNonBlocking(jt JobTask) {
	go func() {
		if err := js.Submit(jt); err != nil {
			core.LogWarn("dropping job: %s", err)
		}
	}()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full. Returns ErrJobSystemShutdown once Shutdown was called.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemShutdown
	}
	js.jobQueue <- jt
	return nil
}
