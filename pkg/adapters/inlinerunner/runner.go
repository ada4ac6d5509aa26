// Package inlinerunner provides a parallel runner that executes every task
// on the calling goroutine.
package inlinerunner

import (
	"fmt"

	"github.com/user/jxlstream/pkg/ports"
)

// Runner runs tasks sequentially in index order.
type Runner struct{}

// New creates a new sequential Runner.
func New() *Runner {
	return &Runner{}
}

// Run calls init with one thread, then each task in order, stopping at the
// first error.
func (r *Runner) Run(numTasks int, init ports.InitFunc, task ports.TaskFunc) error {
	if numTasks <= 0 {
		return nil
	}
	if init != nil {
		if err := init(1); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	for i := range numTasks {
		if err := task(i, 0); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

var _ ports.ParallelRunner = (*Runner)(nil)
