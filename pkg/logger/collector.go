package logger

import (
	"sync"
	"time"
)

// CollectionConfig bounds the in-memory diagnostic log buffer.
type CollectionConfig struct {
	MaxEntries int // ring capacity; oldest entries are evicted first
}

// CollectedEntry is one warn/error log kept for the diagnostics endpoint.
// Repeats of the same message+caller are aggregated into a count instead
// of filling the ring.
type CollectedEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector keeps the most recent warn/error logs in memory.
type LogCollector struct {
	mu      sync.Mutex
	max     int
	order   []string
	entries map[string]*CollectedEntry
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	max := config.MaxEntries
	if max <= 0 {
		max = 256
	}
	return &LogCollector{
		max:     max,
		entries: make(map[string]*CollectedEntry),
	}
}

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := level + "|" + message + "|" + caller

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
		e.Fields = fields
		return
	}

	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = &CollectedEntry{
		Level:     level,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// Entries returns a snapshot in insertion order.
func (c *LogCollector) Entries() []CollectedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CollectedEntry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.entries[key])
	}
	return out
}
