package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState is the breaker position guarding the text generation providers.
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// ProbeFunc reports whether the guarded service answers again.
type ProbeFunc func() bool

type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitState
	failures         int
	failureThreshold int
	resetTimeout     time.Duration
	probeInterval    time.Duration
	nextRetry        time.Time
	nextProbe        time.Time
	probing          bool
	probe            ProbeFunc
	now              func() time.Time
	logger           *zap.Logger
}

// NewCircuitBreaker builds a breaker. An open circuit half-opens once its retry
// time has passed. A non-nil probe runs every probeInterval while the circuit is
// still open and half-opens it early when the service answers.
func NewCircuitBreaker(failureThreshold int, resetTimeout, probeInterval time.Duration, probe ProbeFunc, logger *zap.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		probeInterval:    probeInterval,
		probe:            probe,
		now:              time.Now,
		logger:           logger,
	}
}

// State returns the current position, half-opening an expired open circuit.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitStateOpen {
		return cb.state
	}

	now := cb.now()
	switch {
	case now.After(cb.nextRetry):
		cb.transitionTo(CircuitStateHalfOpen)
	case cb.probe != nil && now.After(cb.nextProbe) && !cb.probing:
		cb.probing = true
		go cb.runProbe()
	}

	return cb.state
}

func (cb *CircuitBreaker) CanExecute() bool {
	return cb.State() != CircuitStateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit breaker: service recovered")
		cb.failures = 0
		cb.transitionTo(CircuitStateClosed)
		return
	}
	cb.failures = 0
}

// RecordFailure counts a failure. A positive timeout overrides the reset timeout
// (used for rate limits).
func (cb *CircuitBreaker) RecordFailure(timeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if timeout <= 0 {
		timeout = cb.resetTimeout
	}

	cb.logger.Warn("Circuit breaker: failure recorded",
		zap.Int("count", cb.failures),
		zap.Int("threshold", cb.failureThreshold),
		zap.Duration("timeout", timeout),
	)

	if cb.state == CircuitStateHalfOpen || cb.failures >= cb.failureThreshold {
		now := cb.now()
		cb.nextRetry = now.Add(timeout)
		cb.nextProbe = now.Add(cb.probeInterval)
		cb.transitionTo(CircuitStateOpen)
	}
}

func (cb *CircuitBreaker) runProbe() {
	healthy := cb.probe()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if cb.state != CircuitStateOpen {
		return
	}
	if healthy {
		cb.transitionTo(CircuitStateHalfOpen)
		return
	}
	cb.nextProbe = cb.now().Add(cb.probeInterval)
	cb.logger.Warn("Circuit breaker: probe failed", zap.Time("next_probe", cb.nextProbe))
}

// must be called with mu held
func (cb *CircuitBreaker) transitionTo(next CircuitState) {
	prev := cb.state
	cb.state = next

	fields := []zap.Field{
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
		zap.Int("failures", cb.failures),
	}
	if next == CircuitStateOpen {
		fields = append(fields, zap.Time("next_retry", cb.nextRetry))
	}
	cb.logger.Info("Circuit breaker: state transition", fields...)
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitStateClosed
	cb.failures = 0
	cb.nextRetry = time.Time{}
}

type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}

func (cb *CircuitBreaker) Status() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{State: cb.state, FailureCount: cb.failures}
	if cb.state == CircuitStateOpen {
		next := cb.nextRetry
		status.NextRetryTime = &next
	}
	return status
}
