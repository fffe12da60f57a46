package testutil

import (
	"fmt"
	"sync"
)

// SequentialTurnIDs generates "turn-1", "turn-2", ... for deterministic tests.
//
// Unlike engine.UUIDv7Generator, SequentialTurnIDs can be reset for test
// reuse, so the same scenario run twice produces identical turn ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialTurnIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialTurnIDs creates a generator. An empty prefix defaults to "turn".
//
// The first call to Generate() returns "<prefix>-1".
func NewSequentialTurnIDs(prefix string) *SequentialTurnIDs {
	if prefix == "" {
		prefix = "turn"
	}
	return &SequentialTurnIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialTurnIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Current returns the count of ids generated so far.
func (g *SequentialTurnIDs) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next Generate() returns "<prefix>-1".
func (g *SequentialTurnIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
