// Package testutil provides deterministic stand-ins for CLI tests.
package testutil

import (
	"fmt"
	"sync"
)

// FixedTraceGenerator returns the same trace id every time, so JSON
// responses can be compared byte for byte.
//
// Thread-safety: FixedTraceGenerator is stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	id string
}

// NewFixedTraceGenerator creates a fixed trace id generator.
// If id is empty, Generate returns "test-trace-default".
func NewFixedTraceGenerator(id string) *FixedTraceGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceGenerator{id: id}
}

// Generate returns the fixed trace id.
func (g *FixedTraceGenerator) Generate() string {
	return g.id
}

// SequentialTraceGenerator yields UUID-shaped ids with an increasing counter
// in the last group. The first call returns ...-000000000001.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialTraceGenerator struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialTraceGenerator creates a generator starting at 0.
func NewSequentialTraceGenerator() *SequentialTraceGenerator {
	return &SequentialTraceGenerator{}
}

// Generate increments the counter and returns the next id.
func (g *SequentialTraceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", g.seq)
}

// Reset restarts the sequence so a test can replay identical ids.
func (g *SequentialTraceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
