// Package resilience guards calls to flaky upstream services. A breaker
// trips after consecutive failures and short-circuits callers until the
// retry window elapses, then probes the upstream before closing again.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/dikoweii/XianTu/pkg/logger"
)

// ErrOpen is returned when the breaker refuses a call without attempting it.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker's position.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config tunes one breaker instance.
type Config struct {
	Name             string
	FailureThreshold uint
	SuccessThreshold uint
	RetryTimeout     time.Duration
}

// DefaultConfig returns conservative settings for an external HTTP upstream.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		RetryTimeout:     60 * time.Second,
	}
}

// Breaker implements the circuit breaker pattern. Closed passes everything
// through; FailureThreshold consecutive failures open it; after RetryTimeout
// it goes half-open and SuccessThreshold successes in a row close it again.
// A failure while half-open reopens it immediately.
type Breaker struct {
	name             string
	failureThreshold uint
	successThreshold uint
	retryTimeout     time.Duration
	log              *logger.Logger

	mu          sync.Mutex
	state       State
	failures    uint
	successes   uint
	nextAttempt time.Time
}

// New creates a breaker. A nil log uses the global logger.
func New(config Config, log *logger.Logger) *Breaker {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Breaker{
		name:             config.Name,
		failureThreshold: config.FailureThreshold,
		successThreshold: config.SuccessThreshold,
		retryTimeout:     config.RetryTimeout,
		log:              log,
		state:            StateClosed,
	}
}

// Do runs fn through the breaker. When the breaker is open the call is not
// attempted and ErrOpen is returned; callers decide how to surface that.
func (b *Breaker) Do(fn func() error) error {
	if !b.allow() {
		b.log.Warn("circuit breaker refusing call", "name", b.name)
		return ErrOpen
	}
	if err := fn(); err != nil {
		b.recordFailure(err)
		return err
	}
	b.recordSuccess()
	return nil
}

// State returns the breaker's current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().After(b.nextAttempt) {
			b.state = StateHalfOpen
			b.successes = 0
			b.log.Info("circuit breaker half-open", "name", b.name)
			return true
		}
		return false
	default:
		return b.successes < b.successThreshold
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.log.Info("circuit breaker closed", "name", b.name)
		}
	}
}

func (b *Breaker) recordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.open()
		}
	case StateHalfOpen:
		b.open()
	}
	b.log.Warn("circuit breaker recorded failure", "name", b.name, "error", err.Error())
}

// open must be called with the mutex held.
func (b *Breaker) open() {
	b.state = StateOpen
	b.nextAttempt = time.Now().Add(b.retryTimeout)
	b.log.Warn("circuit breaker opened",
		"name", b.name,
		"retry_at", b.nextAttempt.Format(time.RFC3339),
	)
}
