// Package ratelimit paces outbound calls to the enrichment source.
package ratelimit

import (
	"context"
	"time"
)

// Waiter blocks until the next call may go out.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Limiter releases at most one caller per interval. A nil *Limiter never blocks.
type Limiter struct {
	ticker   *time.Ticker
	interval time.Duration
}

// PerSecond returns a limiter spacing calls 1/rps apart, or nil (unlimited) when rps <= 0.
func PerSecond(rps int) *Limiter {
	if rps <= 0 {
		return nil
	}
	return Every(time.Second / time.Duration(rps))
}

// Every returns a limiter releasing one caller per interval.
func Every(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Limiter{ticker: time.NewTicker(interval), interval: interval}
}

func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

func (l *Limiter) Stop() {
	if l != nil && l.ticker != nil {
		l.ticker.Stop()
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.ticker == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ticker.C:
		return nil
	}
}
