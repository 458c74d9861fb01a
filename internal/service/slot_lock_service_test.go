package service

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newLockService(t *testing.T) *SlotLockService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewSlotLockService(log)
	t.Cleanup(svc.Stop)
	return svc
}

func TestSlotLockSerializesSameDoctorDay(t *testing.T) {
	svc := newLockService(t)
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	var counter, max int
	var trackMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.Lock(doctorID, day)
			defer unlock()

			trackMu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			trackMu.Unlock()

			time.Sleep(time.Millisecond)

			trackMu.Lock()
			counter--
			trackMu.Unlock()
		}()
	}
	wg.Wait()

	// Only one goroutine may hold the doctor+day mutex at a time.
	assert.Equal(t, 1, max)
}

func TestSlotLockIndependentKeys(t *testing.T) {
	svc := newLockService(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	unlockA := svc.Lock(uuid.New(), day)
	defer unlockA()

	// A different doctor on the same day must not block.
	done := make(chan struct{})
	go func() {
		unlockB := svc.Lock(uuid.New(), day)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different doctor blocked")
	}
}

func TestSlotLockSameDayDifferentClock(t *testing.T) {
	svc := newLockService(t)
	doctorID := uuid.New()

	// Keys are date-precision: any instant within the day maps to one mutex.
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	unlock := svc.Lock(doctorID, morning)

	acquired := make(chan struct{})
	go func() {
		u := svc.Lock(doctorID, evening)
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("same doctor and day acquired concurrently")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not released")
	}
}

func TestSlotLockCleanupDropsStaleEntries(t *testing.T) {
	svc := newLockService(t)
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	key := doctorID.String() + ":" + day.Format("2006-01-02")

	stale := &mutexWithTimestamp{}
	stale.lastUsed.Store(time.Now().Add(-time.Hour).Unix())
	svc.slotMu.Store(key, stale)

	svc.cleanupStaleMutexes()

	_, ok := svc.slotMu.Load(key)
	assert.False(t, ok)

	// A held mutex must survive cleanup regardless of age.
	held := &mutexWithTimestamp{}
	held.lastUsed.Store(time.Now().Add(-time.Hour).Unix())
	held.mu.Lock()
	svc.slotMu.Store(key, held)

	svc.cleanupStaleMutexes()

	_, ok = svc.slotMu.Load(key)
	assert.True(t, ok)
	held.mu.Unlock()
}

func TestSlotLockReacquiresAfterCleanupDrop(t *testing.T) {
	svc := newLockService(t)
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	key := doctorID.String() + ":" + day.Format("2006-01-02")

	// Seed an entry and hold it so a second caller parks on it, then drop
	// it from the map the way cleanup would. On release the parked caller
	// must notice the orphaned mutex and contend on the fresh map entry
	// instead of proceeding with the stale one.
	orphan := &mutexWithTimestamp{}
	orphan.mu.Lock()
	svc.slotMu.Store(key, orphan)

	acquired := make(chan func(), 1)
	go func() {
		acquired <- svc.Lock(doctorID, day)
	}()

	// Let the goroutine park on the orphan, then emulate the cleanup delete.
	time.Sleep(20 * time.Millisecond)
	svc.slotMu.Delete(key)

	// The current map owner for the key, held by this test.
	replacement := &mutexWithTimestamp{}
	replacement.mu.Lock()
	svc.slotMu.Store(key, replacement)

	orphan.mu.Unlock()

	// The caller must not report acquisition while the replacement is held.
	select {
	case <-acquired:
		t.Fatal("lock acquired through a mutex cleanup had dropped")
	case <-time.After(50 * time.Millisecond):
	}

	replacement.mu.Unlock()
	select {
	case unlock := <-acquired:
		unlock()
	case <-time.After(time.Second):
		t.Fatal("lock was never reacquired after cleanup drop")
	}
}

func TestSlotLockStopIsIdempotent(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewSlotLockService(log)

	svc.Stop()
	svc.Stop()
}
