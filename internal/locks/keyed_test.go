package locks

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	keyed := NewKeyed[int64]()

	const workers = 32
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := keyed.Lock(7)
			defer unlock()

			// Unsynchronized on purpose; only the keyed lock protects it.
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("expected %d increments, got %d", workers, counter)
	}
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	keyed := NewKeyed[string]()

	unlockA := keyed.Lock("a")
	defer unlockA()

	// Must not deadlock while "a" is held.
	unlockB := keyed.Lock("b")
	unlockB()
}

func TestEntriesAreDroppedAfterRelease(t *testing.T) {
	keyed := NewKeyed[int64]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(key int64) {
			defer wg.Done()
			unlock := keyed.Lock(key % 4)
			unlock()
		}(int64(i))
	}
	wg.Wait()

	keyed.mu.Lock()
	defer keyed.mu.Unlock()
	if len(keyed.entries) != 0 {
		t.Fatalf("expected no retained entries, got %d", len(keyed.entries))
	}
}

func TestLockIsReacquirableAfterUnlock(t *testing.T) {
	keyed := NewKeyed[int64]()

	unlock := keyed.Lock(1)
	unlock()

	unlock = keyed.Lock(1)
	unlock()
}
