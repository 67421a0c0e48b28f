package metrics

import (
	"sync"
	"testing"
	"time"
)

var (
	_ Recorder = (*InMemoryRecorder)(nil)
	_ Recorder = (*NoopRecorder)(nil)
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTodoCreated()
	m.IncTodoCreated()
	m.IncTodoUpdated()
	m.IncTodoDeleted()
	m.IncUserRegistered()
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginFailed)
	m.IncLogin(LoginFailed)
	m.IncLogout()
	m.IncAuthRejected(RejectMissingToken)
	m.IncAuthRejected(RejectRevokedToken)
	m.IncAuthRejected(RejectRevokedToken)
	m.ObserveHashDuration(2 * time.Millisecond)
	m.IncSessionCacheHit()
	m.IncSessionCacheMiss()

	snap := m.Snapshot()

	checks := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"TodosCreated", snap.TodosCreated, 2},
		{"TodosUpdated", snap.TodosUpdated, 1},
		{"TodosDeleted", snap.TodosDeleted, 1},
		{"UsersRegistered", snap.UsersRegistered, 1},
		{"LoginsSucceeded", snap.LoginsSucceeded, 1},
		{"LoginsFailed", snap.LoginsFailed, 2},
		{"Logouts", snap.Logouts, 1},
		{"missing_token", snap.AuthRejected[RejectMissingToken], 1},
		{"revoked_token", snap.AuthRejected[RejectRevokedToken], 2},
		{"HashDurationCount", snap.HashDurationCount, 1},
		{"SessionCacheHits", snap.SessionCacheHits, 1},
		{"SessionCacheMisses", snap.SessionCacheMisses, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if snap.HashDurationTotalNs != int64(2*time.Millisecond) {
		t.Errorf("HashDurationTotalNs = %d", snap.HashDurationTotalNs)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncAuthRejected(RejectInvalidToken)

	snap := m.Snapshot()
	snap.AuthRejected[RejectInvalidToken] = 99

	if got := m.Snapshot().AuthRejected[RejectInvalidToken]; got != 1 {
		t.Errorf("AuthRejected[invalid_token] = %d, want 1", got)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncTodoCreated()
			m.IncAuthRejected(RejectStoreError)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.TodosCreated != 50 || snap.AuthRejected[RejectStoreError] != 50 {
		t.Errorf("snapshot = %+v, want 50 of each", snap)
	}
}
