package lock_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/w3task/internal/lock"
)

func TestKeyedBasicLockUnlock(t *testing.T) {
	l := lock.NewKeyed[uint64]()

	l.Lock(1)
	assert.Equal(t, 1, l.Len())
	l.Unlock(1)
	assert.Equal(t, 0, l.Len())

	// Should be able to lock again after unlock.
	l.Lock(1)
	l.Unlock(1)

	// Unlocking an unknown key is a no-op.
	l.Unlock(42)
}

func TestKeyedSameKeyBlocks(t *testing.T) {
	l := lock.NewKeyed[uint64]()
	order := make(chan int, 2)
	locked := make(chan struct{})

	go func() {
		l.Lock(1)
		close(locked)
		order <- 1
		time.Sleep(50 * time.Millisecond)
		l.Unlock(1)
	}()

	<-locked
	go func() {
		l.Lock(1)
		order <- 2
		l.Unlock(1)
	}()

	assert.Equal(t, 1, <-order)
	assert.Equal(t, 2, <-order)
}

func TestKeyedDifferentKeysConcurrent(t *testing.T) {
	l := lock.NewKeyed[uint64]()

	l.Lock(1)
	defer l.Unlock(1)

	done := make(chan struct{})
	go func() {
		l.Lock(2)
		l.Unlock(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking a different key should not block")
	}
}

func TestKeyedSerializesCounter(t *testing.T) {
	l := lock.NewKeyed[string]()

	var wg sync.WaitGroup
	var inside atomic.Int32
	var maxInside atomic.Int32
	counter := 0

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("task")
			defer l.Unlock("task")

			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			counter++
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, l.Len())
}
