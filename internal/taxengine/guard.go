package taxengine

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
)

// guardKey identifies one guarded edit: a line and the field being
// overridden on it.
type guardKey struct {
	lineID snowflake.ID
	field  invoicedomain.LineField
}

// OverrideGuard suppresses the engine's own write-driven recalculation while
// a manual override settles. Each (line, field) pair carries its own state;
// edits to other lines are never serialized against each other. The settle
// transition fires when the dependent write completes, not on a timer. The
// guard is shared by every handler through the engine singleton, so all
// state transitions take the mutex.
type OverrideGuard struct {
	mu         sync.Mutex
	inProgress map[guardKey]struct{}
}

func NewOverrideGuard() *OverrideGuard {
	return &OverrideGuard{inProgress: make(map[guardKey]struct{})}
}

// Begin marks an override in progress for the line's field. Returns false if
// one is already settling, in which case the caller must drop the event.
func (g *OverrideGuard) Begin(lineID snowflake.ID, field invoicedomain.LineField) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := guardKey{lineID: lineID, field: field}
	if _, busy := g.inProgress[key]; busy {
		return false
	}
	g.inProgress[key] = struct{}{}
	return true
}

// Settle returns the pair to idle after the override's writes complete.
func (g *OverrideGuard) Settle(lineID snowflake.ID, field invoicedomain.LineField) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inProgress, guardKey{lineID: lineID, field: field})
}

// Suppressed reports whether any override is settling on the line, meaning
// incidental triggers (qty, rate, item changes) from the same write cycle
// must be ignored.
func (g *OverrideGuard) Suppressed(lineID snowflake.ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key := range g.inProgress {
		if key.lineID == lineID {
			return true
		}
	}
	return false
}
