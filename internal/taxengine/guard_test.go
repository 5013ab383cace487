package taxengine

import (
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/spotledger/taxcore/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

func TestOverrideGuardLifecycle(t *testing.T) {
	node := mustNode(t)
	lineA := node.Generate()
	lineB := node.Generate()

	g := NewOverrideGuard()

	assert.False(t, g.Suppressed(lineA))
	assert.True(t, g.Begin(lineA, invoicedomain.FieldSTAmount))

	// Re-entry on the same pair is rejected while settling.
	assert.False(t, g.Begin(lineA, invoicedomain.FieldSTAmount))

	// Any override on the line suppresses incidental triggers for that
	// line only.
	assert.True(t, g.Suppressed(lineA))
	assert.False(t, g.Suppressed(lineB))

	// A different field on the same line is its own state.
	assert.True(t, g.Begin(lineA, invoicedomain.FieldSTRate))

	g.Settle(lineA, invoicedomain.FieldSTAmount)
	assert.True(t, g.Suppressed(lineA))

	g.Settle(lineA, invoicedomain.FieldSTRate)
	assert.False(t, g.Suppressed(lineA))

	// Settled pairs can begin again.
	assert.True(t, g.Begin(lineA, invoicedomain.FieldSTAmount))
}

func TestOverrideGuardConcurrentTransitions(t *testing.T) {
	node := mustNode(t)
	g := NewOverrideGuard()

	// One goroutine per line cycling the full state machine, plus a reader
	// probing suppression on the same line. Meaningful under -race.
	lines := make([]snowflake.ID, 8)
	for i := range lines {
		lines[i] = node.Generate()
	}

	var wg sync.WaitGroup
	for _, lineID := range lines {
		lineID := lineID
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if g.Begin(lineID, invoicedomain.FieldSTRate) {
					g.Settle(lineID, invoicedomain.FieldSTRate)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				g.Suppressed(lineID)
			}
		}()
	}
	wg.Wait()

	for _, lineID := range lines {
		assert.False(t, g.Suppressed(lineID))
	}
}
