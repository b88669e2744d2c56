package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/jcmexdev/catering-invoices/internal/invoicing/core/ports"
)

// Ensure NumberSequence implements the port at compile time.
var _ ports.NumberSequence = (*NumberSequence)(nil)

// NumberSequence issues invoice numbers of the form INV-<year>-<seq>, e.g.
// INV-2026-001. The counter starts at 1, only ever grows, and is never
// reused after deletions; it resets when the process restarts. Numbers are
// therefore not unique across concurrent processes — a single-process
// deployment is assumed.
type NumberSequence struct {
	mu   sync.Mutex
	next int
	now  func() time.Time
}

// NewNumberSequence returns a sequence starting at 1 on the wall clock.
func NewNumberSequence() *NumberSequence {
	return NewNumberSequenceWithClock(1, time.Now)
}

// NewNumberSequenceWithClock allows an explicit starting value and clock,
// for deterministic tests and for seeding from persisted state.
func NewNumberSequenceWithClock(start int, now func() time.Time) *NumberSequence {
	return &NumberSequence{next: start, now: now}
}

// Next returns the next invoice number. Safe for concurrent use.
// The counter is zero-padded to three digits but never truncated, so the
// 1000th invoice of a process is INV-<year>-1000.
func (s *NumberSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	s.next++
	return fmt.Sprintf("INV-%d-%03d", s.now().Year(), n)
}
