package workers

import (
	"sync"
	"testing"
)

// mockWorker tracks how many times Run was called.
type mockWorker struct {
	mu       sync.Mutex
	runCount int
	done     chan struct{}
}

func newMockWorker() *mockWorker {
	return &mockWorker{done: make(chan struct{})}
}

func (m *mockWorker) Run() {
	m.mu.Lock()
	m.runCount++
	m.mu.Unlock()
	close(m.done)
}

func (m *mockWorker) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCount
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := newMockWorker()
	w2 := newMockWorker()
	w3 := newMockWorker()

	ws := NewWorkers(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		<-w.done
		if w.count() != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.count())
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := NewWorkers()

	// Should not panic on an empty workers list
	ws.Run()
}
