package systems

import (
	"context"
	"errors"
	"sync"

	"github.com/spaghettifunk/cadscene/engine/core"
)

/**
 * @brief A unit of work for the job system. Run executes on a worker
 * goroutine; exactly one of OnComplete or OnFailure follows it, then
 * OnCompletionCallback.
 */
type JobTask struct {
	Name                 string
	Run                  func() error
	OnComplete           func()
	OnFailure            func(err error)
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// mu guards closed; senders hold it shared so Shutdown never closes
	// jobQueue under an in-flight send.
	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
var ErrNilJob = errors.New("job has no Run function")
var ErrJobSystemClosed = errors.New("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan JobTask, channelSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func(worker int) {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.execute(worker, job)
			}
		}(i)
	}
}

func (js *JobSystem) execute(worker int, job JobTask) {
	var err error
	if job.Run == nil {
		err = ErrNilJob
	} else {
		err = job.Run()
	}

	if err != nil {
		core.LogDebug("worker %d: job %q failed: %s", worker, job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
	} else if job.OnComplete != nil {
		job.OnComplete()
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

// Workers returns the size of the pool.
func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down. Queued jobs still run; later submissions
 * fail with ErrJobSystemClosed.
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

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	return js.SubmitContext(context.Background(), jt)
}

// SubmitContext is Submit that gives up when ctx is done while the queue
// is full.
func (js *JobSystem) SubmitContext(ctx context.Context, jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	select {
	case js.jobQueue <- jt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
