// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes passed to IncLogin.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
)

// Auth rejection reasons passed to IncAuthRejected.
const (
	RejectMissingToken = "missing_token"
	RejectInvalidToken = "invalid_token"
	RejectRevokedToken = "revoked_token"
	RejectStoreError   = "store_error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()

	// User and session metrics
	IncUserRegistered()
	IncLogin(status string)
	IncLogout()
	IncAuthRejected(reason string)
	ObserveHashDuration(duration time.Duration)

	// Session cache metrics
	IncSessionCacheHit()
	IncSessionCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
