package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TodosCreated        uint64
	TodosUpdated        uint64
	TodosDeleted        uint64
	UsersRegistered     uint64
	LoginsSucceeded     uint64
	LoginsFailed        uint64
	Logouts             uint64
	AuthRejected        map[string]uint64
	HashDurationCount   uint64
	HashDurationTotalNs int64
	SessionCacheHits    uint64
	SessionCacheMisses  uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics endpoint.
type InMemoryRecorder struct {
	todosCreated        uint64
	todosUpdated        uint64
	todosDeleted        uint64
	usersRegistered     uint64
	loginsSucceeded     uint64
	loginsFailed        uint64
	logouts             uint64
	hashDurationCount   uint64
	hashDurationTotalNs int64
	sessionCacheHits    uint64
	sessionCacheMisses  uint64

	mu           sync.Mutex
	authRejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{authRejected: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.authRejected))
	for reason, n := range m.authRejected {
		rejected[reason] = n
	}
	m.mu.Unlock()

	return Snapshot{
		TodosCreated:        atomic.LoadUint64(&m.todosCreated),
		TodosUpdated:        atomic.LoadUint64(&m.todosUpdated),
		TodosDeleted:        atomic.LoadUint64(&m.todosDeleted),
		UsersRegistered:     atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:     atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:        atomic.LoadUint64(&m.loginsFailed),
		Logouts:             atomic.LoadUint64(&m.logouts),
		AuthRejected:        rejected,
		HashDurationCount:   atomic.LoadUint64(&m.hashDurationCount),
		HashDurationTotalNs: atomic.LoadInt64(&m.hashDurationTotalNs),
		SessionCacheHits:    atomic.LoadUint64(&m.sessionCacheHits),
		SessionCacheMisses:  atomic.LoadUint64(&m.sessionCacheMisses),
	}
}

// IncTodoCreated increments todo created counter.
func (m *InMemoryRecorder) IncTodoCreated() {
	atomic.AddUint64(&m.todosCreated, 1)
}

// IncTodoUpdated increments todo updated counter.
func (m *InMemoryRecorder) IncTodoUpdated() {
	atomic.AddUint64(&m.todosUpdated, 1)
}

// IncTodoDeleted increments todo deleted counter.
func (m *InMemoryRecorder) IncTodoDeleted() {
	atomic.AddUint64(&m.todosDeleted, 1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == LoginSuccess {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncLogout increments the logout counter.
func (m *InMemoryRecorder) IncLogout() {
	atomic.AddUint64(&m.logouts, 1)
}

// IncAuthRejected counts a guard rejection by reason.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	m.mu.Lock()
	m.authRejected[reason]++
	m.mu.Unlock()
}

// ObserveHashDuration records time spent hashing or verifying a password.
func (m *InMemoryRecorder) ObserveHashDuration(duration time.Duration) {
	atomic.AddUint64(&m.hashDurationCount, 1)
	atomic.AddInt64(&m.hashDurationTotalNs, duration.Nanoseconds())
}

// IncSessionCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncSessionCacheHit() {
	atomic.AddUint64(&m.sessionCacheHits, 1)
}

// IncSessionCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncSessionCacheMiss() {
	atomic.AddUint64(&m.sessionCacheMisses, 1)
}
