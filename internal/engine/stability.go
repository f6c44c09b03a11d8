package engine

import "time"

// TickStability runs one simulation step. viewing maps player id to the file
// that player currently has open; players with no known presence are
// skipped. Returns true when at least one player actually changed, so the
// caller can suppress redundant broadcasts.
func TickStability(s *State, viewing map[string]string, now time.Time) bool {
	if s.Phase != PhasePlaying {
		return false
	}
	changed := false
	nowMs := now.UnixMilli()

	for i := range s.Players {
		p := &s.Players[i]
		file, ok := viewing[p.ID]
		if !ok {
			continue
		}

		if p.GlitchedUntil != 0 {
			if nowMs < p.GlitchedUntil {
				continue // frozen
			}
			// Recovery is the only way out of a glitch.
			p.GlitchedUntil = 0
			p.Stability = RecoveryStability
			changed = true
			continue
		}

		defects := s.ErrorsInFile(file)
		if defects == 0 {
			if p.Stability < MaxStability {
				p.Stability = min(MaxStability, p.Stability+StabilityRegen)
				changed = true
			}
			continue
		}

		next := max(0, p.Stability-StabilityDrainPerDefect*defects)
		if next != p.Stability {
			p.Stability = next
			changed = true
		}
		if p.Stability == 0 && p.GlitchedUntil == 0 {
			p.GlitchedUntil = now.Add(GlitchDuration).UnixMilli()
			changed = true
		}
	}
	return changed
}
