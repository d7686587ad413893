package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/position"
)

func TestParseBand(t *testing.T) {
	b, err := position.ParseBand("far")
	require.NoError(t, err)
	assert.Equal(t, position.Far, b)

	_, err = position.ParseBand("adjacent")
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, position.Distance(position.Melee, position.Melee))
	assert.Equal(t, 2, position.Distance(position.Melee, position.Far))
	assert.Equal(t, 3, position.Distance(position.Distant, position.Melee))
}

func TestFartherCloser(t *testing.T) {
	assert.Equal(t, position.Near, position.Melee.Farther())
	assert.Equal(t, position.Distant, position.Distant.Farther())
	assert.Equal(t, position.Melee, position.Melee.Closer())
	assert.Equal(t, position.Far, position.Distant.Closer())
}

func TestTracker_MoveKeepsPrevious(t *testing.T) {
	tr := position.NewTracker()
	tr.Place("rogue", position.Melee)

	p := tr.Move("rogue", position.Near)
	assert.Equal(t, position.Pair{Previous: position.Melee, Current: position.Near}, p)
	assert.True(t, p.Left(position.Melee))
	assert.True(t, p.Moved())

	tr.Settle("rogue")
	got, ok := tr.Position("rogue")
	require.True(t, ok)
	assert.False(t, got.Moved())
	assert.Equal(t, position.Near, tr.Band("rogue"))
}

func TestTracker_UnknownIsDistant(t *testing.T) {
	tr := position.NewTracker()
	assert.Equal(t, position.Distant, tr.Band("ghost"))
	_, ok := tr.Position("ghost")
	assert.False(t, ok)
}

func TestProperty_DistanceSymmetric(t *testing.T) {
	bands := []position.Band{position.Melee, position.Near, position.Far, position.Distant}
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.SampledFrom(bands).Draw(rt, "a")
		b := rapid.SampledFrom(bands).Draw(rt, "b")
		if position.Distance(a, b) != position.Distance(b, a) {
			rt.Fatalf("distance not symmetric for %s,%s", a, b)
		}
		if position.Distance(a, b) > 3 {
			rt.Fatalf("distance out of range")
		}
	})
}
