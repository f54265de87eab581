// Package ledger implements the per-date intake reservation state owned by a
// single plant process. Reservations for one calendar date are fully isolated
// from every other date; available capacity is derived, never stored.
package ledger

import (
	"sync"
	"time"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// DefaultUnitsPerTon is the fixed conversion ratio between raw intake units
// (containers) and the externally visible capacity unit (tons).
const DefaultUnitsPerTon = 1000

// Ledger tracks reserved intake units per calendar date for one plant.
// All methods are safe for concurrent use.
type Ledger struct {
	mu           sync.Mutex
	baseCapacity float64 // tons
	unitsPerTon  float64
	reserved     map[string]int // ISO date -> cumulative reserved units
}

// New creates a Ledger with the given base capacity in tons. unitsPerTon
// must be positive; pass DefaultUnitsPerTon unless the deployment overrides it.
func New(baseCapacity float64, unitsPerTon float64) *Ledger {
	if unitsPerTon <= 0 {
		unitsPerTon = DefaultUnitsPerTon
	}
	return &Ledger{
		baseCapacity: baseCapacity,
		unitsPerTon:  unitsPerTon,
		reserved:     make(map[string]int),
	}
}

// Reserve adds units to the running sum for the given date, creating the
// entry on first use. There is deliberately no upper bound and no
// deduplication: reserving twice double-counts, and over-reservation is
// absorbed by the clamp in Available.
func (l *Ledger) Reserve(date time.Time, units int) {
	key := dateKey(date)
	l.mu.Lock()
	l.reserved[key] += units
	l.mu.Unlock()
}

// Available returns the remaining capacity in tons for the given date:
// max(0, base - reserved/unitsPerTon). A date with no reservations yields
// the full base capacity.
func (l *Ledger) Available(date time.Time) float64 {
	l.mu.Lock()
	units := l.reserved[dateKey(date)]
	l.mu.Unlock()

	available := l.baseCapacity - float64(units)/l.unitsPerTon
	if available < 0 {
		return 0
	}
	return available
}

// Reserved returns the cumulative reserved units for the given date.
func (l *Ledger) Reserved(date time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserved[dateKey(date)]
}

// Prune drops every entry for a date strictly before cutoff and reports how
// many entries were removed. Without pruning the map grows for the lifetime
// of the plant process, so long-running deployments should call this
// periodically with a retention window they are comfortable with.
func (l *Ledger) Prune(cutoff time.Time) int {
	limit := dateKey(cutoff)
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key := range l.reserved {
		if key < limit {
			delete(l.reserved, key)
			removed++
		}
	}
	return removed
}

// dateKey normalises a timestamp to its calendar date. ISO dates compare
// lexicographically, which Prune relies on.
func dateKey(t time.Time) string {
	return t.Format(model.DateLayout)
}
