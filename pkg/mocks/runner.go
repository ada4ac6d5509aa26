package mocks

import (
	"sync"

	"github.com/user/jxlstream/pkg/ports"
)

// ParallelRunner is a mock implementation of ports.ParallelRunner.
// By default it runs tasks sequentially and records each call.
type ParallelRunner struct {
	mu sync.Mutex

	RunFunc func(numTasks int, init ports.InitFunc, task ports.TaskFunc) error

	// Threads is passed to init; 0 means 1.
	Threads int

	Calls []int
}

func (m *ParallelRunner) Run(numTasks int, init ports.InitFunc, task ports.TaskFunc) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, numTasks)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(numTasks, init, task)
	}

	threads := max(m.Threads, 1)
	if init != nil {
		if err := init(threads); err != nil {
			return err
		}
	}
	for i := range numTasks {
		if err := task(i, i%threads); err != nil {
			return err
		}
	}
	return nil
}

// TotalTasks returns the number of tasks across all calls.
func (m *ParallelRunner) TotalTasks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

var _ ports.ParallelRunner = (*ParallelRunner)(nil)
