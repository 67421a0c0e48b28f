package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTodoCreated is a no-op.
func (n *NoopRecorder) IncTodoCreated() {}

// IncTodoUpdated is a no-op.
func (n *NoopRecorder) IncTodoUpdated() {}

// IncTodoDeleted is a no-op.
func (n *NoopRecorder) IncTodoDeleted() {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncLogout is a no-op.
func (n *NoopRecorder) IncLogout() {}

// IncAuthRejected is a no-op.
func (n *NoopRecorder) IncAuthRejected(reason string) {}

// ObserveHashDuration is a no-op.
func (n *NoopRecorder) ObserveHashDuration(duration time.Duration) {}

// IncSessionCacheHit is a no-op.
func (n *NoopRecorder) IncSessionCacheHit() {}

// IncSessionCacheMiss is a no-op.
func (n *NoopRecorder) IncSessionCacheMiss() {}
