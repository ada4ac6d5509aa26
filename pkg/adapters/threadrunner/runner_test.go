package threadrunner

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunner_EveryIndexOnce(t *testing.T) {
	r := New(4)
	defer r.Close()

	const numTasks = 1000
	counts := make([]atomic.Int32, numTasks)

	var threads int
	err := r.Run(numTasks, func(n int) error {
		threads = n
		return nil
	}, func(index, threadID int) error {
		if threadID < 0 || threadID >= threads {
			t.Errorf("thread id %d out of range", threadID)
		}
		counts[index].Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if threads != 4 {
		t.Errorf("expected 4 threads, got %d", threads)
	}
	for i := range counts {
		if c := counts[i].Load(); c != 1 {
			t.Fatalf("task %d ran %d times", i, c)
		}
	}
}

func TestRunner_ThreadIDsAreExclusive(t *testing.T) {
	r := New(3)
	defer r.Close()

	var busy [3]atomic.Bool
	err := r.Run(300, nil, func(index, threadID int) error {
		if !busy[threadID].CompareAndSwap(false, true) {
			return errors.New("thread id shared by concurrent tasks")
		}
		busy[threadID].Store(false)
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRunner_PropagatesError(t *testing.T) {
	r := New(2)
	defer r.Close()

	boom := errors.New("boom")
	var ran atomic.Int32
	err := r.Run(10000, nil, func(index, threadID int) error {
		ran.Add(1)
		if index == 5 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ran.Load() == 10000 {
		t.Error("expected remaining tasks to be skipped")
	}
}

func TestRunner_InitError(t *testing.T) {
	r := New(2)
	defer r.Close()

	boom := errors.New("no scratch")
	err := r.Run(4, func(int) error { return boom }, func(int, int) error {
		t.Error("task must not run after init failure")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected init error, got %v", err)
	}
}

func TestRunner_Reuse(t *testing.T) {
	r := New(2)
	defer r.Close()

	for session := range 5 {
		var sum atomic.Int64
		if err := r.Run(100, nil, func(index, threadID int) error {
			sum.Add(int64(index))
			return nil
		}); err != nil {
			t.Fatalf("session %d: %v", session, err)
		}
		if sum.Load() != 4950 {
			t.Errorf("session %d: expected sum 4950, got %d", session, sum.Load())
		}
	}
}

func TestRunner_ConcurrentRunsSerialized(t *testing.T) {
	r := New(4)
	defer r.Close()

	var active atomic.Int32
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Run(1, func(int) error {
				if active.Add(1) != 1 {
					return errors.New("overlapping runs")
				}
				return nil
			}, func(int, int) error {
				active.Add(-1)
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

func TestRunner_Close(t *testing.T) {
	r := New(2)
	r.Close()
	r.Close()

	if err := r.Run(1, nil, func(int, int) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestNew_DefaultWorkers(t *testing.T) {
	r := New(0)
	defer r.Close()

	if r.NumWorkers() != DefaultNumWorkers() {
		t.Errorf("expected %d workers, got %d", DefaultNumWorkers(), r.NumWorkers())
	}
}
