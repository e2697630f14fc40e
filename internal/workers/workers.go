// Package workers runs the watchdog's background workers in a unified way.
// It defines the Worker interface and a Workers aggregate that launches
// each worker in its own goroutine.
package workers

// Worker is a long-running background task. Run is expected to block for
// the duration of the worker's life.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run() {
//	    // tick forever
//	}
type Worker interface {
	Run()
}

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run launches every worker in its own goroutine and returns immediately.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		go worker.Run()
	}
}
