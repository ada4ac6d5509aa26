package ports

// InitFunc is called once per Run before any task, with the number of
// threads the runner will use. It lets the caller allocate per-thread scratch.
type InitFunc func(numThreads int) error

// TaskFunc processes one task. threadID is in [0, numThreads) as passed to
// the InitFunc, and no two concurrent calls share a threadID.
type TaskFunc func(index, threadID int) error

// ParallelRunner executes independent tasks, possibly on several threads.
type ParallelRunner interface {
	// Run calls init once, then task exactly once for every index in
	// [0, numTasks). It returns after every dispatched task has completed.
	// The first error from init or a task is returned and remaining
	// undispatched tasks are skipped.
	Run(numTasks int, init InitFunc, task TaskFunc) error
}
