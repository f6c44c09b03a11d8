package engine

import (
	"slices"
	"strings"
	"time"
)

// GuessOutcome tells the room actor what to broadcast, if anything.
type GuessOutcome int

const (
	// GuessIgnored covers the silent preconditions: unknown player or a
	// glitched guesser. Network reordering makes these routine, not errors.
	GuessIgnored GuessOutcome = iota
	// GuessNotFound means the referenced defect is no longer active; the
	// sender alone gets a notice.
	GuessNotFound
	GuessCorrect
	GuessWrong
)

// ResolveGuess validates and applies a defect-category claim. Category
// comparison is case-insensitive. On a match the defect is removed, the file
// recomposed, and the guesser rewarded; on a mismatch the guesser pays the
// stability penalty and the defect stays active.
func ResolveGuess(s *State, playerID, errorID, guessed string, now time.Time) GuessOutcome {
	p := s.FindPlayer(playerID)
	if p == nil || p.Glitched(now) {
		return GuessIgnored
	}
	e := s.FindError(errorID)
	if e == nil {
		return GuessNotFound
	}

	if strings.EqualFold(string(e.Type), guessed) {
		corrected := *e
		s.Errors = slices.DeleteFunc(s.Errors, func(x CodeError) bool { return x.ID == errorID })
		p.ErrorsCaught++
		RestoreFile(s, corrected)
		p.Stability = min(MaxStability, p.Stability+CorrectGuessBonus)
		return GuessCorrect
	}

	p.Stability = max(0, p.Stability-WrongGuessPenalty)
	if p.Stability == 0 && p.GlitchedUntil == 0 {
		p.GlitchedUntil = now.Add(GlitchDuration).UnixMilli()
	}
	return GuessWrong
}
