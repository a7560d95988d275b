package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup
	// senders waits for jobs handed to a goroutine because the queue was full
	senders sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan metadata.JobTask, channelSize)
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
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

// run executes one job. A panicking job is reported through OnFailure and
// never takes the worker down.
func (js *JobSystem) run(job metadata.JobTask) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("job '%s' panicked: %v", job.Name, r)
			core.LogError("%s", err)
			if job.OnFailure != nil {
				job.OnFailure(err)
			}
		}
	}()

	if err := job.OnStart(); err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

// Workers returns the number of worker goroutines.
func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down. Queued jobs still run; new submissions fail.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	js.mu.Unlock()

	js.senders.Wait()
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Never blocks:
 * when the queue is full the job is handed over by a separate goroutine, so
 * jobs may submit further jobs. Jobs handed over that way may start out of
 * submission order.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.OnStart == nil {
		return fmt.Errorf("job '%s' has no entry point", jt.Name)
	}

	js.mu.RLock()
	defer js.mu.RUnlock()

	if js.closed {
		return core.ErrJobSystemShutdown
	}
	select {
	case js.jobQueue <- jt:
	default:
		js.senders.Add(1)
		go func() {
			defer js.senders.Done()
			js.jobQueue <- jt
		}()
	}
	return nil
}
