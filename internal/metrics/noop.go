package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncTokenRefreshed is a no-op.
func (n *NoopRecorder) IncTokenRefreshed() {}

// IncTokenRefreshRejected is a no-op.
func (n *NoopRecorder) IncTokenRefreshRejected() {}

// IncWebhookIngested is a no-op.
func (n *NoopRecorder) IncWebhookIngested(source string) {}
