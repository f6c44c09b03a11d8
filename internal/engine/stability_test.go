package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stabilityFixture(t *testing.T) *State {
	t.Helper()
	s := NewState([]string{"javascript"})
	s.AddPlayer("p1", "Ada", true)
	require.NoError(t, s.StartRound(twoFiles(), "p1", time.Now()))
	return s
}

func addDefects(s *State, file string, n int) {
	for i := 0; i < n; i++ {
		s.NextSeq++
		s.Errors = append(s.Errors, CodeError{
			ID:   "e" + string(rune('0'+i)),
			File: file,
			Seq:  s.NextSeq,
		})
	}
}

func TestTickStability_RegenCappedAt100(t *testing.T) {
	s := stabilityFixture(t)
	s.Players[0].Stability = 99

	changed := TickStability(s, map[string]string{"p1": "a.js"}, time.Now())
	assert.True(t, changed)
	assert.Equal(t, 100, s.Players[0].Stability)

	// Already full: nothing changed, nothing to broadcast.
	changed = TickStability(s, map[string]string{"p1": "a.js"}, time.Now())
	assert.False(t, changed)
}

func TestTickStability_DrainScalesWithDefectCount(t *testing.T) {
	s := stabilityFixture(t)
	addDefects(s, "a.js", 2)

	TickStability(s, map[string]string{"p1": "a.js"}, time.Now())
	assert.Equal(t, 100-2*StabilityDrainPerDefect, s.Players[0].Stability)
}

func TestTickStability_ZeroTriggersGlitch(t *testing.T) {
	s := stabilityFixture(t)
	s.Players[0].Stability = 3
	addDefects(s, "a.js", 1)

	now := time.Now()
	TickStability(s, map[string]string{"p1": "a.js"}, now)

	p := s.Players[0]
	assert.Equal(t, 0, p.Stability)
	assert.Equal(t, now.Add(GlitchDuration).UnixMilli(), p.GlitchedUntil)
}

func TestTickStability_GlitchedPlayerIsFrozen(t *testing.T) {
	s := stabilityFixture(t)
	now := time.Now()
	s.Players[0].Stability = 0
	s.Players[0].GlitchedUntil = now.Add(GlitchDuration).UnixMilli()

	changed := TickStability(s, map[string]string{"p1": "a.js"}, now)
	assert.False(t, changed)
	assert.Equal(t, 0, s.Players[0].Stability)
}

func TestTickStability_RecoveryIsExact(t *testing.T) {
	s := stabilityFixture(t)
	now := time.Now()
	s.Players[0].Stability = 0
	s.Players[0].GlitchedUntil = now.Add(-time.Millisecond).UnixMilli()

	changed := TickStability(s, map[string]string{"p1": "a.js"}, now)
	assert.True(t, changed)
	assert.Equal(t, RecoveryStability, s.Players[0].Stability)
	assert.Zero(t, s.Players[0].GlitchedUntil)
}

func TestTickStability_SkipsPlayersWithoutPresence(t *testing.T) {
	s := stabilityFixture(t)
	addDefects(s, "a.js", 3)

	changed := TickStability(s, map[string]string{}, time.Now())
	assert.False(t, changed)
	assert.Equal(t, MaxStability, s.Players[0].Stability)
}

func TestTickStability_OnlyWhilePlaying(t *testing.T) {
	s := stabilityFixture(t)
	require.NoError(t, s.EndRound())
	assert.False(t, TickStability(s, map[string]string{"p1": "a.js"}, time.Now()))
}

func TestTickStability_ClampedToRange(t *testing.T) {
	s := stabilityFixture(t)
	s.Players[0].Stability = 2
	addDefects(s, "a.js", 4)

	TickStability(s, map[string]string{"p1": "a.js"}, time.Now())
	assert.Equal(t, 0, s.Players[0].Stability, "drain floors at zero")
}
