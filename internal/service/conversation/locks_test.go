package conversation

import (
	"sync"
	"testing"
)

func TestSessionLocksSerialize(t *testing.T) {
	locks := newSessionLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Acquire("sess-1")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestSessionLocksReleaseEntries(t *testing.T) {
	locks := newSessionLocks()

	release := locks.Acquire("sess-1")
	release()

	locks.mu.Lock()
	remaining := len(locks.locks)
	locks.mu.Unlock()
	if remaining != 0 {
		t.Errorf("lock table should be empty after release, has %d entries", remaining)
	}
}

func TestSessionLocksIndependentKeys(t *testing.T) {
	locks := newSessionLocks()

	releaseA := locks.Acquire("a")
	defer releaseA()

	// 不同会话键互不阻塞
	done := make(chan struct{})
	go func() {
		releaseB := locks.Acquire("b")
		releaseB()
		close(done)
	}()
	<-done
}
