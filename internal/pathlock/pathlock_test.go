package pathlock_test

import (
	"sync"
	"testing"
	"time"

	"tidy/internal/pathlock"
)

func TestLockSerializesSameDirectory(t *testing.T) {
	table := pathlock.NewTable()

	const workers = 8
	const iterations = 200
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := table.Lock("/watched/Documents")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Fatalf("counter = %d, want %d", counter, workers*iterations)
	}
}

func TestLockKeysByCleanedPath(t *testing.T) {
	table := pathlock.NewTable()

	unlock := table.Lock("/watched/Documents")
	done := make(chan struct{})
	go func() {
		// The trailing-slash spelling must contend for the same lock.
		inner := table.Lock("/watched/Documents/")
		inner()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done
}

func TestLockDistinctDirectoriesIndependent(t *testing.T) {
	table := pathlock.NewTable()

	unlockA := table.Lock("/watched/Documents")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlockB := table.Lock("/watched/Images")
		unlockB()
		close(acquired)
	}()
	<-acquired
}
