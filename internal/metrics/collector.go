// Package metrics provides in-memory request statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// RequestMetrics holds aggregated timings for a single API operation.
type RequestMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	LastTime  time.Duration
}

// RequestSnapshot provides computed stats from raw metrics.
type RequestSnapshot struct {
	Operation   string
	Count       int64
	Errors      int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
	LastTimeMs  int64
}

// Operation names recorded by the API client.
const (
	OpLogin      = "login"
	OpRegister   = "register"
	OpLogout     = "logout"
	OpListChats  = "list_chats"
	OpCreateChat = "create_chat"
	OpMessages   = "messages"
	OpSend       = "send"
)

// Collector aggregates in-memory request statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*RequestMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*RequestMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold the write lock.
func (c *Collector) getOrCreate(op string) *RequestMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &RequestMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// Record records one request for an operation.
func (c *Collector) Record(op string, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	if failed {
		m.Errors++
	}
	m.TotalTime += duration
	m.LastTime = duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Requests returns the total number of recorded requests.
func (c *Collector) Requests() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, m := range c.ops {
		n += m.Count
	}
	return n
}

// Last returns the duration of the most recent request for an operation,
// or zero if none has been recorded.
func (c *Collector) Last(op string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if m, ok := c.ops[op]; ok {
		return m.LastTime
	}
	return 0
}

// Snapshot returns computed stats for every recorded operation.
func (c *Collector) Snapshot() []RequestSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]RequestSnapshot, 0, len(c.ops))
	for op, m := range c.ops {
		s := RequestSnapshot{
			Operation:   op,
			Count:       m.Count,
			Errors:      m.Errors,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			LastTimeMs:  m.LastTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		}
		if m.Count > 0 {
			s.AvgTimeMs = float64(m.TotalTime.Milliseconds()) / float64(m.Count)
			s.MinTimeMs = m.MinTime.Milliseconds()
		}
		out = append(out, s)
	}
	return out
}

// Uptime returns the time since the collector was created.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}
