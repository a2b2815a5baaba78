package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered       uint64
	LoginSuccesses        uint64
	LoginFailures         uint64
	TokensRefreshed       uint64
	TokenRefreshRejected  uint64
	WebhooksIngested      uint64
	WebhooksBySource      map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered      uint64
	loginSuccesses       uint64
	loginFailures        uint64
	tokensRefreshed      uint64
	tokenRefreshRejected uint64
	webhooksIngested     uint64

	mu               sync.Mutex
	webhooksBySource map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		webhooksBySource: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	bySource := make(map[string]uint64, len(m.webhooksBySource))
	for k, v := range m.webhooksBySource {
		bySource[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered:      atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:       atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:        atomic.LoadUint64(&m.loginFailures),
		TokensRefreshed:      atomic.LoadUint64(&m.tokensRefreshed),
		TokenRefreshRejected: atomic.LoadUint64(&m.tokenRefreshRejected),
		WebhooksIngested:     atomic.LoadUint64(&m.webhooksIngested),
		WebhooksBySource:     bySource,
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenRefreshed increments the token rotation counter.
func (m *InMemoryRecorder) IncTokenRefreshed() {
	atomic.AddUint64(&m.tokensRefreshed, 1)
}

// IncTokenRefreshRejected increments the rejected refresh counter.
func (m *InMemoryRecorder) IncTokenRefreshRejected() {
	atomic.AddUint64(&m.tokenRefreshRejected, 1)
}

// IncWebhookIngested increments the ingestion counters.
func (m *InMemoryRecorder) IncWebhookIngested(source string) {
	atomic.AddUint64(&m.webhooksIngested, 1)
	m.mu.Lock()
	m.webhooksBySource[source]++
	m.mu.Unlock()
}
