package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotLockService serializes booking admission per (doctor, day). The
// conflict check is a check-then-act sequence; without serialization two
// concurrent requests for overlapping slots can both pass the scan before
// either insert commits. Holding the doctor+day lock across read, check and
// write closes that window inside the process; the unique index on
// (doctor_id, date, time) backstops multi-instance deployments.
type SlotLockService struct {
	log *logrus.Logger

	// Per doctor+day mutex
	slotMu sync.Map // map[string]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotLockService creates a new SlotLockService.
// Starts background goroutine for mutex cleanup.
// Call Stop() during graceful shutdown.
func NewSlotLockService(log *logrus.Logger) *SlotLockService {
	svc := &SlotLockService{
		log:      log,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

// Lock acquires the mutex for the doctor's calendar day and returns an
// unlock function. The day is truncated to date precision so every request
// targeting the same doctor and date contends on the same key.
func (s *SlotLockService) Lock(doctorID uuid.UUID, day time.Time) func() {
	key := fmt.Sprintf("%s:%s", doctorID.String(), day.Format("2006-01-02"))

	for {
		actual, _ := s.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
		m := actual.(*mutexWithTimestamp)
		m.mu.Lock()

		// Cleanup may have dropped this mutex between the load and the
		// lock; holding a mutex the map no longer owns would let a second
		// caller acquire a fresh one for the same key.
		if current, ok := s.slotMu.Load(key); !ok || current != m {
			m.mu.Unlock()
			continue
		}

		m.lastUsed.Store(time.Now().Unix())
		return func() {
			m.lastUsed.Store(time.Now().Unix())
			m.mu.Unlock()
		}
	}
}

// cleanupMutexMapLoop drops mutexes that have not been used recently so the
// map does not grow unbounded across doctors and days.
func (s *SlotLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

func (s *SlotLockService) cleanupStaleMutexes() {
	cutoff := time.Now().Add(-mutexStaleThreshold).Unix()
	removed := 0

	s.slotMu.Range(func(key, value interface{}) bool {
		m := value.(*mutexWithTimestamp)
		if m.lastUsed.Load() >= cutoff {
			return true
		}
		// Only drop a mutex nobody currently holds
		if m.mu.TryLock() {
			s.slotMu.Delete(key)
			m.mu.Unlock()
			removed++
		}
		return true
	})

	if removed > 0 {
		s.log.Debugf("Cleaned up %d stale slot mutexes", removed)
	}
}
