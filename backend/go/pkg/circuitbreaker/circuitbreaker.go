package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where requests are allowed.
	Closed State = iota
	// Open state is when the circuit has tripped and requests are blocked.
	Open
	// HalfOpen lets trial requests through to probe whether the downstream recovered.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs req unless the circuit is open.
	Execute(req func() (interface{}, error)) (interface{}, error)
	// State returns the current state of the circuit breaker.
	State() State
}

// Option configures a breaker.
type Option func(*breaker)

// OnStateChange registers a callback invoked (outside the lock) on every transition.
func OnStateChange(fn func(from, to State)) Option {
	return func(b *breaker) { b.onChange = fn }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *breaker) { b.now = now }
}

type breaker struct {
	failureThreshold uint32        // consecutive failures that trip the circuit
	successThreshold uint32        // consecutive half-open successes that close it
	timeout          time.Duration // how long to stay open before probing

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time

	now      func() time.Time
	onChange func(from, to State)
}

// New creates a circuit breaker.
// failureThreshold: consecutive failures required to open the circuit.
// successThreshold: consecutive successes in half-open state required to close it.
// timeout: how long the circuit remains open before moving to half-open.
func New(failureThreshold, successThreshold uint32, timeout time.Duration, opts ...Option) CircuitBreaker {
	if failureThreshold == 0 {
		failureThreshold = 1
	}
	if successThreshold == 0 {
		successThreshold = 1
	}
	b := &breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		state:            Closed,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) > b.timeout {
		return HalfOpen
	}
	return b.state
}

func (b *breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	b.mu.Lock()
	var transition *[2]State
	if b.state == Open && b.now().Sub(b.openedAt) > b.timeout {
		transition = b.setState(HalfOpen)
		b.successes = 0
	}
	if b.state == Open {
		b.mu.Unlock()
		return nil, ErrCircuitOpen
	}
	b.mu.Unlock()
	b.notify(transition)

	res, err := req()

	b.mu.Lock()
	if err != nil {
		transition = b.onFailure()
	} else {
		transition = b.onSuccess()
	}
	b.mu.Unlock()
	b.notify(transition)

	if err != nil {
		return nil, err
	}
	return res, nil
}

// onSuccess must be called with the lock held.
func (b *breaker) onSuccess() *[2]State {
	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.failures = 0
			b.successes = 0
			return b.setState(Closed)
		}
	case Closed:
		b.failures = 0
	}
	return nil
}

// onFailure must be called with the lock held.
func (b *breaker) onFailure() *[2]State {
	switch b.state {
	case HalfOpen:
		return b.trip()
	case Closed:
		b.failures++
		if b.failures >= b.failureThreshold {
			return b.trip()
		}
	}
	return nil
}

func (b *breaker) trip() *[2]State {
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
	return b.setState(Open)
}

func (b *breaker) setState(to State) *[2]State {
	from := b.state
	b.state = to
	if from == to {
		return nil
	}
	return &[2]State{from, to}
}

func (b *breaker) notify(t *[2]State) {
	if t != nil && b.onChange != nil {
		b.onChange(t[0], t[1])
	}
}
