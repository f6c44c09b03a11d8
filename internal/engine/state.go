package engine

import (
	"errors"
	"slices"
	"time"
)

var ErrNotHost = errors.New("sender is not the host")
var ErrWrongPhase = errors.New("intent not valid in current phase")
var ErrTooFewFiles = errors.New("round needs at least two files")

func NewState(languages []string) *State {
	if len(languages) == 0 {
		languages = []string{"csharp"}
	}
	return &State{
		Phase:          PhaseLobby,
		Players:        []Player{},
		Languages:      languages,
		ErrorThreshold: ThresholdBase,
	}
}

// AddPlayer registers a connection as a player, replacing any stale entry
// with the same id. The host flag is honored only while the room has no
// host, keeping exactly one host per room.
func (s *State) AddPlayer(id, name string, wantsHost bool) *Player {
	s.Players = slices.DeleteFunc(s.Players, func(p Player) bool { return p.ID == id })
	isHost := wantsHost && !s.hasHost()
	s.Players = append(s.Players, Player{
		ID:        id,
		Name:      name,
		IsHost:    isHost,
		Stability: MaxStability,
	})
	return &s.Players[len(s.Players)-1]
}

// RemovePlayer drops the player and reassigns the host role to the oldest
// remaining player when the host leaves. It also clears the return-to-lobby
// acknowledgement so departed players never block the lobby transition.
func (s *State) RemovePlayer(id string) (wasHost bool) {
	for _, p := range s.Players {
		if p.ID == id {
			wasHost = p.IsHost
			break
		}
	}
	s.Players = slices.DeleteFunc(s.Players, func(p Player) bool { return p.ID == id })
	if wasHost && len(s.Players) > 0 && !s.hasHost() {
		s.Players[0].IsHost = true
	}
	s.Returned = slices.DeleteFunc(s.Returned, func(r string) bool { return r == id })
	return wasHost
}

func (s *State) hasHost() bool {
	for _, p := range s.Players {
		if p.IsHost {
			return true
		}
	}
	return false
}

func (s *State) FindPlayer(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *State) FindFile(name string) *FileContent {
	for i := range s.Files {
		if s.Files[i].Name == name {
			return &s.Files[i]
		}
	}
	return nil
}

func (s *State) FindError(id string) *CodeError {
	for i := range s.Errors {
		if s.Errors[i].ID == id {
			return &s.Errors[i]
		}
	}
	return nil
}

// ErrorsInFile counts active defects in the named file.
func (s *State) ErrorsInFile(name string) int {
	n := 0
	for _, e := range s.Errors {
		if e.File == name {
			n++
		}
	}
	return n
}

// StartRound moves lobby → playing. Callers provide the selected file set
// (already padded to at least two files by the catalog).
func (s *State) StartRound(files []FileContent, hostID string, now time.Time) error {
	if s.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	host := s.FindPlayer(hostID)
	if host == nil || !host.IsHost {
		return ErrNotHost
	}
	if len(files) < MinFiles {
		return ErrTooFewFiles
	}
	s.Phase = PhasePlaying
	s.Files = files
	s.Errors = nil
	s.Returned = nil
	s.NextSeq = 0
	s.GameStartTime = now.UnixMilli()
	s.ErrorThreshold = ThresholdBase + (len(s.Players) - 1)
	for i := range s.Players {
		s.Players[i].Stability = MaxStability
		s.Players[i].GlitchedUntil = 0
		s.Players[i].ErrorsCaught = 0
	}
	return nil
}

// EndRound moves playing → gameover and clears the acknowledgement set.
func (s *State) EndRound() error {
	if s.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	s.Phase = PhaseGameOver
	s.Returned = nil
	return nil
}

// MarkReturned records a return-to-lobby acknowledgement. Idempotent.
func (s *State) MarkReturned(id string) {
	if s.Phase != PhaseGameOver {
		return
	}
	if !slices.Contains(s.Returned, id) {
		s.Returned = append(s.Returned, id)
	}
}

// AllReturned reports whether every currently connected id has acknowledged.
func (s *State) AllReturned(connected []string) bool {
	if s.Phase != PhaseGameOver || len(connected) == 0 {
		return false
	}
	for _, id := range connected {
		if !slices.Contains(s.Returned, id) {
			return false
		}
	}
	return true
}

// ResetToLobby moves gameover → lobby and discards the round state.
func (s *State) ResetToLobby() error {
	if s.Phase != PhaseGameOver {
		return ErrWrongPhase
	}
	s.Phase = PhaseLobby
	s.Files = nil
	s.Errors = nil
	s.Returned = nil
	s.GameStartTime = 0
	return nil
}

// Clone returns a deep copy. Handlers mutate the copy and swap it in only
// after a successful persist, so a failed save drops the intent cleanly.
func (s *State) Clone() *State {
	c := *s
	c.Players = slices.Clone(s.Players)
	c.Files = slices.Clone(s.Files)
	c.Errors = slices.Clone(s.Errors)
	c.Languages = slices.Clone(s.Languages)
	c.Returned = slices.Clone(s.Returned)
	return &c
}
