package client

import "sync/atomic"

// Generation is a monotonically increasing counter that guards against
// stale async results. A load captures Current() when it starts; before
// committing its result it checks StillCurrent. Any view-state change in
// between bumps the counter and the late result is discarded.
type Generation struct {
	counter atomic.Int64
}

func (generation *Generation) Current() int64 {
	return generation.counter.Load()
}

func (generation *Generation) Bump() int64 {
	return generation.counter.Add(1)
}

func (generation *Generation) StillCurrent(token int64) bool {
	return generation.counter.Load() == token
}
