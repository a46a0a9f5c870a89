// Package budget accumulates token and cost usage across agent calls.
package budget

import (
	"sync"
	"time"
)

// Usage holds cumulative usage figures.
type Usage struct {
	Calls     int
	TokensIn  int
	TokensOut int
	Cost      float64
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int {
	return u.TokensIn + u.TokensOut
}

// Tracker records usage over a run. It records only; limits are not
// enforced here.
type Tracker struct {
	mu    sync.Mutex
	usage Usage
	start time.Time
}

// NewTracker creates a tracker with the clock started.
func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

// Add records one agent call's usage.
func (t *Tracker) Add(tokensIn, tokensOut int, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Calls++
	t.usage.TokensIn += tokensIn
	t.usage.TokensOut += tokensOut
	t.usage.Cost += cost
}

// Usage returns a copy of the cumulative usage.
func (t *Tracker) Usage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// Elapsed returns the wall-clock time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.start)
}
