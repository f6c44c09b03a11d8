package engine

import "time"

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameover"
)

// Category identifies one kind of synthetic defect. The values double as the
// wire identifiers clients guess with; comparison is case-insensitive.
type Category string

const (
	CatMissingSemicolon Category = "missing_semicolon"
	CatWrongQuotes      Category = "wrong_quotes"
	CatTypo             Category = "typo"
	CatWrongBracket     Category = "wrong_bracket"
	CatExtraChar        Category = "extra_char"
	CatWrongOperator    Category = "wrong_operator"
	CatMissingColon     Category = "missing_colon"
	CatWrongIndentation Category = "wrong_indentation"
)

// Tuning constants for a round. Thresholds scale with the player count so a
// bigger crew gets a proportionally bigger error budget.
const (
	ThresholdBase         = 5
	SurvivalDuration      = 5 * time.Minute
	SpawnInterval         = 15 * time.Second
	StabilityTickInterval = time.Second

	MaxStability            = 100
	StabilityRegen          = 2
	StabilityDrainPerDefect = 5
	RecoveryStability       = 50
	CorrectGuessBonus       = 10
	WrongGuessPenalty       = 15
	GlitchDuration          = 8 * time.Second

	MinFiles = 2
)

type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Range struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsHost        bool   `json:"isHost"`
	Stability     int    `json:"stability"`
	GlitchedUntil int64  `json:"glitchedUntil,omitempty"` // unix ms; zero when not glitched
	ErrorsCaught  int    `json:"errorsCaught"`
}

// Glitched reports whether the player is frozen at the given time.
func (p *Player) Glitched(now time.Time) bool {
	return p.GlitchedUntil != 0 && now.UnixMilli() < p.GlitchedUntil
}

// FileContent holds the current, possibly defect-mutated text. Only the
// injector and guess resolution touch Content.
type FileContent struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// CodeError is one active defect. OriginalText is the exact substring that
// was replaced; Snapshot is the whole file content just before this defect
// was injected. Seq orders defects by injection so recomposition can replay
// the ones a snapshot does not yet contain.
type CodeError struct {
	ID           string   `json:"id"`
	File         string   `json:"file"`
	Range        Range    `json:"range"`
	Type         Category `json:"type"`
	OriginalText string   `json:"originalText"`
	Snapshot     string   `json:"originalContentSnapshot"`
	Seq          int      `json:"seq"`
}

// Presence is ephemeral, last-write-wins per player, never persisted.
type Presence struct {
	PlayerID string `json:"id"`
	Name     string `json:"name"`
	File     string `json:"file"`
	Cursor   Cursor `json:"cursor"`
	Color    string `json:"color"`
}

type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"sender"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // unix ms
}

// State is the authoritative per-room aggregate. It is owned by exactly one
// room actor and serialized as-is for persistence; clients never see the
// defect fields that would give guesses away.
type State struct {
	Phase          Phase         `json:"phase"`
	Players        []Player      `json:"players"`
	Files          []FileContent `json:"files"`
	Errors         []CodeError   `json:"errors"`
	Languages      []string      `json:"languages"`
	ErrorThreshold int           `json:"errorThreshold"`
	GameStartTime  int64         `json:"gameStartTime,omitempty"` // unix ms
	Returned       []string      `json:"returnedAfterGameOver,omitempty"`
	NextSeq        int           `json:"nextSeq"`
}
