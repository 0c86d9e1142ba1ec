package core

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultMaxConcurrentConversions is the default limit for parallel conversions.
const DefaultMaxConcurrentConversions = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// drainPollInterval is how often WaitForDrain checks for idle.
const drainPollInterval = 100 * time.Millisecond

// ConversionLimiter bounds the number of conversions running at once.
// A held slot is one element in the buffered channel, so the channel
// length is the active count.
type ConversionLimiter struct {
	slots    chan struct{}
	maxWait  time.Duration
	rejected atomic.Int64
}

// NewConversionLimiter creates a limiter allowing at most maxConcurrent
// simultaneous conversions. Non-positive arguments select the defaults.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentConversions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ConversionLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits up to the limiter's max wait for a slot.
// It returns ErrTooManyConversions when the wait expires and ctx.Err() when
// ctx ends first. Every successful Acquire must be paired with Release.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		l.rejected.Add(1)
		return ErrTooManyConversions
	}
}

// TryAcquire takes a slot if one is free.
func (l *ConversionLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ConversionLimiter) Release() {
	<-l.slots
}

// ActiveCount returns the number of running conversions.
func (l *ConversionLimiter) ActiveCount() int {
	return len(l.slots)
}

// MaxConcurrent returns the slot count.
func (l *ConversionLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *ConversionLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// Rejected returns how many Acquire calls gave up waiting.
func (l *ConversionLimiter) Rejected() int64 {
	return l.rejected.Load()
}

// WaitForDrain blocks until no conversion holds a slot or ctx is done.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a snapshot of the limiter for the status endpoints.
type LimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Rejected      int64 `json:"rejected"`
}

// Status returns the current limiter state.
func (l *ConversionLimiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
		Rejected:      l.Rejected(),
	}
}
