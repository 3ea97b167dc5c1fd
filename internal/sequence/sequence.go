// Package sequence generates human-readable business identifiers for purchase
// requests, exception records and rules.
package sequence

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Schemes selectable via configuration.
const (
	SchemeSequence = "sequence"
	SchemeUUID     = "uuid"
)

// Generator produces business ids. Implementations must be safe for
// concurrent use.
type Generator interface {
	// NextPR returns a purchase request id, e.g. PR-2026-08-28-001.
	NextPR() string
	// NextException returns an exception id, e.g. EXC-20260828-001.
	NextException() string
	// NextRule returns a rule id, e.g. RULE-001.
	NextRule() string
}

// New returns the generator for the configured scheme. Unknown schemes fall
// back to the in-process counter.
func New(scheme string) Generator {
	if scheme == SchemeUUID {
		return UUIDGenerator{}
	}
	return NewCounterGenerator(time.Now)
}

// CounterGenerator derives ids from in-process atomic counters plus a date
// stamp. Counters reset on restart, so uniqueness holds only within a single
// running process; deployments with multiple instances must use the UUID
// scheme instead.
type CounterGenerator struct {
	now          func() time.Time
	prSeq        atomic.Int64
	exceptionSeq atomic.Int64
	ruleSeq      atomic.Int64
}

// NewCounterGenerator creates a counter generator using the given clock.
func NewCounterGenerator(now func() time.Time) *CounterGenerator {
	return &CounterGenerator{now: now}
}

func (g *CounterGenerator) NextPR() string {
	return fmt.Sprintf("PR-%s-%03d", g.now().Format("2006-01-02"), g.prSeq.Add(1))
}

func (g *CounterGenerator) NextException() string {
	return fmt.Sprintf("EXC-%s-%03d", g.now().Format("20060102"), g.exceptionSeq.Add(1))
}

func (g *CounterGenerator) NextRule() string {
	return fmt.Sprintf("RULE-%03d", g.ruleSeq.Add(1))
}

// UUIDGenerator derives ids from random UUIDs. Safe across process restarts
// and multiple instances, at the cost of longer, non-sequential ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NextPR() string        { return "PR-" + uuid.NewString() }
func (UUIDGenerator) NextException() string { return "EXC-" + uuid.NewString() }
func (UUIDGenerator) NextRule() string      { return "RULE-" + uuid.NewString() }
