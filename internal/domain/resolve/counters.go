package resolve

import "sync/atomic"

// Counters tracks which resolution paths served requests over the
// process lifetime. A request increments at most one of the personal and
// default counters, plus the online counter when blending occurred.
// Counters only grow; they reset on process restart.
type Counters struct {
	personal atomic.Int64
	deflt    atomic.Int64
	online   atomic.Int64
}

// Personal returns the number of requests served from a user-indexed table.
func (c *Counters) Personal() int64 { return c.personal.Load() }

// Default returns the number of requests served from top_popular.
func (c *Counters) Default() int64 { return c.deflt.Load() }

// Online returns the number of requests that invoked blending.
func (c *Counters) Online() int64 { return c.online.Load() }

// Snapshot returns the counters keyed the way the stats surface exposes
// them.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"request_personal_count":    c.personal.Load(),
		"request_default_count":     c.deflt.Load(),
		"request_with_online_count": c.online.Load(),
	}
}
