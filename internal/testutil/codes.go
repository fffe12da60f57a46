package testutil

import (
	"errors"
	"sync"
)

// ErrCodesExhausted is returned once every fixed code has been handed out.
var ErrCodesExhausted = errors.New("fixed codes exhausted")

// FixedCodes returns predetermined confirmation codes in order.
//
// This enables deterministic conversations and golden transcript comparison.
// Tests give the codes they expect to be issued and can then supply them as
// the user's answer.
//
// Thread-safety: FixedCodes is safe for concurrent use via internal mutex.
type FixedCodes struct {
	mu    sync.Mutex
	codes []int
	idx   int
	err   error
}

// NewFixedCodes creates a generator that returns codes in order.
//
// Example:
//
//	gen := NewFixedCodes(4821, 1234)
//	gen.Generate() // 4821, nil
//	gen.Generate() // 1234, nil
//	gen.Generate() // 0, ErrCodesExhausted
func NewFixedCodes(codes ...int) *FixedCodes {
	return &FixedCodes{codes: codes}
}

// FailingCodes returns a generator whose every call fails with err.
func FailingCodes(err error) *FixedCodes {
	return &FixedCodes{err: err}
}

// Generate returns the next predetermined code.
//
// Returns ErrCodesExhausted when all codes have been consumed. Failing fast
// catches tests that issue more codes than they expected.
func (g *FixedCodes) Generate() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return 0, g.err
	}
	if g.idx >= len(g.codes) {
		return 0, ErrCodesExhausted
	}
	code := g.codes[g.idx]
	g.idx++
	return code, nil
}

// Issued returns how many codes have been handed out.
func (g *FixedCodes) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx
}
