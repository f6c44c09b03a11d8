// Package room hosts the per-room actor. All intents for a room are
// processed one at a time against one in-memory State, so handlers never
// race each other; cross-room actors run independently.
package room

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glitchhunt/glitchhunt-backend/internal/catalog"
	"github.com/glitchhunt/glitchhunt-backend/internal/engine"
	"github.com/glitchhunt/glitchhunt-backend/internal/protocol"
	"github.com/glitchhunt/glitchhunt-backend/internal/store"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	ConnID string
	Name   string
	Host   bool
	Outbox chan protocol.Outbound
	// Reply, when non-nil, receives whether the join was accepted. A stopped
	// actor refuses queued joins while draining, so a sender selecting on
	// Reply and Done never hangs on a dead room.
	Reply chan bool
}

type Leave struct{ ConnID string }

type FromClient struct {
	ConnID string
	Intent protocol.Intent
}

type Shutdown struct{}

// GetState reflects internal state without data races; used by tests.
type GetState struct{ Reply chan View }

type View struct {
	NumClients int
	Presences  int
	State      engine.State
}

func (Join) isRoomMsg()       {}
func (Leave) isRoomMsg()      {}
func (FromClient) isRoomMsg() {}
func (Shutdown) isRoomMsg()   {}
func (GetState) isRoomMsg()   {}

var presenceColors = []string{
	"#ef4444", "#f97316", "#eab308", "#22c55e", "#06b6d4", "#8b5cf6",
}

// Timing lets tests shrink the round timers; zero fields fall back to the
// engine defaults.
type Timing struct {
	Spawn         time.Duration
	StabilityTick time.Duration
	Survival      time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.Spawn == 0 {
		t.Spawn = engine.SpawnInterval
	}
	if t.StabilityTick == 0 {
		t.StabilityTick = engine.StabilityTickInterval
	}
	if t.Survival == 0 {
		t.Survival = engine.SurvivalDuration
	}
	return t
}

type Options struct {
	Code      string
	Languages []string
	Store     store.Store
	Logger    *zap.Logger
	// OnEmpty is called once when the last connection leaves, so the hub can
	// evict the actor.
	OnEmpty func(code string)
	Timing  Timing
}

type client struct {
	outbox chan protocol.Outbound
	seq    int
}

type Room struct {
	code      string
	inbox     chan Msg
	state     *engine.State
	conns     map[string]*client
	presences map[string]engine.Presence
	nextSeq   int

	store   store.Store
	log     *zap.Logger
	rnd     *rand.Rand
	timing  Timing
	onEmpty func(string)

	// Round timers are fields on the actor, never process-wide, so rooms in
	// one process can never interfere with each other. All three are armed
	// on round start and cancelled together on round end.
	spawnTicker     *time.Ticker
	stabilityTicker *time.Ticker
	survivalTimer   *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

// New activates a room actor, loading durable state when it exists and
// starting a fresh lobby otherwise.
func New(parent context.Context, opts Options) (*Room, error) {
	st, err := loadState(parent, opts.Store, opts.Code, opts.Languages)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:      opts.Code,
		inbox:     make(chan Msg, 64),
		state:     st,
		conns:     make(map[string]*client),
		presences: make(map[string]engine.Presence),
		store:     opts.Store,
		log:       opts.Logger.With(zap.String("room", opts.Code)),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		timing:    opts.Timing.withDefaults(),
		onEmpty:   opts.OnEmpty,
		ctx:       ctx,
		cancel:    cancel,
	}
	// A reloaded mid-round room has lost its timers; rearm them.
	if r.state.Phase == engine.PhasePlaying {
		r.armTimers()
	}
	go r.loop()
	return r, nil
}

func loadState(ctx context.Context, st store.Store, code string, languages []string) (*engine.State, error) {
	blob, found, err := st.Load(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return engine.NewState(languages), nil
	}
	var s engine.State
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the actor has stopped. Senders select against it so a
// message aimed at a dead room fails fast instead of sitting in the inbox.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg.ConnID)
			case FromClient:
				r.handleIntent(msg.ConnID, msg.Intent)
			case GetState:
				msg.Reply <- View{
					NumClients: len(r.conns),
					Presences:  len(r.presences),
					State:      *r.state.Clone(),
				}
			case Shutdown:
				r.shutdown()
				return
			}

		case <-r.spawnC():
			r.onSpawnTick()
		case <-r.stabilityC():
			r.onStabilityTick()
		case <-r.survivalC():
			r.onSurvivalTimeout()
		}
	}
}

// Nil channels block forever, so disarmed timers simply drop out of the
// select.
func (r *Room) spawnC() <-chan time.Time {
	if r.spawnTicker == nil {
		return nil
	}
	return r.spawnTicker.C
}

func (r *Room) stabilityC() <-chan time.Time {
	if r.stabilityTicker == nil {
		return nil
	}
	return r.stabilityTicker.C
}

func (r *Room) survivalC() <-chan time.Time {
	if r.survivalTimer == nil {
		return nil
	}
	return r.survivalTimer.C
}

func (r *Room) armTimers() {
	r.stopTimers()
	r.spawnTicker = time.NewTicker(r.timing.Spawn)
	r.stabilityTicker = time.NewTicker(r.timing.StabilityTick)
	r.survivalTimer = time.NewTimer(r.timing.Survival)
}

func (r *Room) stopTimers() {
	if r.spawnTicker != nil {
		r.spawnTicker.Stop()
		r.spawnTicker = nil
	}
	if r.stabilityTicker != nil {
		r.stabilityTicker.Stop()
		r.stabilityTicker = nil
	}
	if r.survivalTimer != nil {
		r.survivalTimer.Stop()
		r.survivalTimer = nil
	}
}

func (r *Room) shutdown() {
	r.stopTimers()
	for id, c := range r.conns {
		close(c.outbox)
		delete(r.conns, id)
	}
	r.cancel()
	// Joins buffered behind the stop are refused, never silently dropped;
	// anything racing in after this drain is covered by the sender's select
	// on Done.
	for {
		select {
		case m := <-r.inbox:
			if join, ok := m.(Join); ok {
				close(join.Outbox)
				if join.Reply != nil {
					join.Reply <- false
				}
			}
		default:
			return
		}
	}
}

// commit persists the mutated copy and swaps it in. On failure the intent is
// dropped: the in-memory state stays at the last durably-committed value and
// the room keeps serving.
func (r *Room) commit(work *engine.State) bool {
	blob, err := json.Marshal(work)
	if err != nil {
		r.log.Error("encode room state", zap.Error(err))
		return false
	}
	ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()
	if err := r.store.Save(ctx, r.code, blob); err != nil {
		r.log.Error("persist room state", zap.Error(err))
		return false
	}
	r.state = work
	return true
}

func (r *Room) broadcast(msg protocol.Outbound) {
	for id, c := range r.conns {
		select {
		case c.outbox <- msg:
		default:
			// Slow or wedged client: drop it. The ws layer notices the
			// closed channel and issues the Leave.
			close(c.outbox)
			delete(r.conns, id)
		}
	}
}

func (r *Room) sendTo(connID string, msg protocol.Outbound) {
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		close(c.outbox)
		delete(r.conns, connID)
	}
}

func (r *Room) connectedIDs() []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) presenceList() []engine.Presence {
	list := make([]engine.Presence, 0, len(r.presences))
	for _, p := range r.presences {
		list = append(list, p)
	}
	return list
}

func (r *Room) handleJoin(msg Join) {
	work := r.state.Clone()
	work.AddPlayer(msg.ConnID, msg.Name, msg.Host)
	if !r.commit(work) {
		close(msg.Outbox)
		if msg.Reply != nil {
			msg.Reply <- false
		}
		return
	}
	r.conns[msg.ConnID] = &client{outbox: msg.Outbox, seq: r.nextSeq}
	r.nextSeq++
	if msg.Reply != nil {
		msg.Reply <- true
	}

	r.sendTo(msg.ConnID, protocol.NewInit(r.state, r.presenceList(), msg.ConnID))
	r.broadcast(protocol.NewStateUpdate(protocol.PartialState{Players: r.state.Players}))
	r.log.Info("player joined",
		zap.String("player", msg.ConnID),
		zap.String("name", msg.Name),
		zap.Bool("host", msg.Host))
}

func (r *Room) handleLeave(connID string) {
	if c, ok := r.conns[connID]; ok {
		close(c.outbox)
		delete(r.conns, connID)
	}
	delete(r.presences, connID)

	if r.state.FindPlayer(connID) != nil {
		work := r.state.Clone()
		work.RemovePlayer(connID)
		// A leaver must never block the gameover → lobby transition, so the
		// acknowledgement check reruns on every disconnect.
		returnedToLobby := false
		if work.Phase == engine.PhaseGameOver && work.AllReturned(r.connectedIDs()) {
			if err := work.ResetToLobby(); err == nil {
				returnedToLobby = true
			}
		}
		if r.commit(work) {
			r.broadcast(protocol.NewStateUpdate(protocol.PartialState{Players: r.state.Players}))
			if returnedToLobby {
				r.broadcastLobbyReset()
			}
		}
	}
	r.broadcast(protocol.NewPresenceUpdate(r.presenceList()))
	r.log.Info("player left", zap.String("player", connID))

	if len(r.conns) == 0 {
		r.stopTimers()
		if r.onEmpty != nil {
			r.onEmpty(r.code)
		}
		r.cancel()
	}
}

func (r *Room) handleIntent(connID string, intent protocol.Intent) {
	switch it := intent.(type) {
	case protocol.PresenceIntent:
		r.handlePresence(connID, it)
	case protocol.StartGameIntent:
		r.handleStartGame(connID, it)
	case protocol.GuessIntent:
		r.handleGuess(connID, it)
	case protocol.ChatIntent:
		r.handleChat(connID, it)
	case protocol.SelectFileIntent:
		// Advisory only; the viewed file that matters for the simulation
		// comes from presence updates.
	case protocol.ReturnToLobbyIntent:
		r.handleReturnToLobby(connID)
	}
}

func (r *Room) handlePresence(connID string, it protocol.PresenceIntent) {
	p := r.state.FindPlayer(connID)
	c, connected := r.conns[connID]
	if p == nil || !connected {
		return
	}
	r.presences[connID] = engine.Presence{
		PlayerID: connID,
		Name:     p.Name,
		File:     it.File,
		Cursor:   it.Cursor,
		Color:    presenceColors[c.seq%len(presenceColors)],
	}
	r.broadcast(protocol.NewPresenceUpdate(r.presenceList()))
}

func (r *Room) handleStartGame(connID string, it protocol.StartGameIntent) {
	work := r.state.Clone()
	files := catalog.SelectFiles(work.Languages, it.MapID, r.rnd)
	if err := work.StartRound(files, connID, time.Now()); err != nil {
		// Out-of-phase or non-host start: the designed idempotence boundary.
		r.log.Debug("start ignored", zap.Error(err))
		return
	}
	// The round never starts empty.
	engine.SpawnDefect(work, r.rnd)
	if !r.commit(work) {
		return
	}
	r.armTimers()

	phase := r.state.Phase
	threshold := r.state.ErrorThreshold
	start := r.state.GameStartTime
	r.broadcast(protocol.NewStateUpdate(protocol.PartialState{
		Phase:          &phase,
		Players:        r.state.Players,
		Files:          &r.state.Files,
		Errors:         protocol.ErrorViews(r.state.Errors),
		ErrorThreshold: &threshold,
		GameStartTime:  &start,
	}))
	r.log.Info("round started",
		zap.Int("players", len(r.state.Players)),
		zap.Int("files", len(r.state.Files)),
		zap.Int("threshold", threshold))
}

func (r *Room) handleGuess(connID string, it protocol.GuessIntent) {
	if r.state.Phase != engine.PhasePlaying {
		return
	}
	work := r.state.Clone()
	switch engine.ResolveGuess(work, connID, it.ErrorID, it.GuessedType, time.Now()) {
	case engine.GuessIgnored:
	case engine.GuessNotFound:
		r.sendTo(connID, protocol.NewErrorNotice(protocol.CodeErrorNotFound, "error is no longer active"))
	case engine.GuessCorrect:
		if !r.commit(work) {
			return
		}
		r.broadcast(protocol.NewErrorCorrected(it.ErrorID, protocol.PartialState{
			Players: r.state.Players,
			Files:   &r.state.Files,
			Errors:  protocol.ErrorViews(r.state.Errors),
		}))
	case engine.GuessWrong:
		if !r.commit(work) {
			return
		}
		r.broadcast(protocol.NewGuessWrong(it.ErrorID, protocol.PartialState{
			Players: r.state.Players,
		}))
	}
}

func (r *Room) handleChat(connID string, it protocol.ChatIntent) {
	p := r.state.FindPlayer(connID)
	if p == nil {
		return
	}
	r.broadcast(protocol.NewChat(engine.ChatMessage{
		ID:         "chat_" + uuid.NewString(),
		SenderID:   connID,
		SenderName: p.Name,
		Text:       it.Text,
		Timestamp:  time.Now().UnixMilli(),
	}))
}

func (r *Room) handleReturnToLobby(connID string) {
	if r.state.Phase != engine.PhaseGameOver {
		return
	}
	work := r.state.Clone()
	work.MarkReturned(connID)
	returnedToLobby := false
	if work.AllReturned(r.connectedIDs()) {
		if err := work.ResetToLobby(); err == nil {
			returnedToLobby = true
		}
	}
	if !r.commit(work) {
		return
	}
	if returnedToLobby {
		r.broadcastLobbyReset()
	}
}

func (r *Room) broadcastLobbyReset() {
	phase := engine.PhaseLobby
	emptyFiles := []engine.FileContent{}
	emptyErrors := []protocol.ErrorView{}
	r.broadcast(protocol.NewStateUpdate(protocol.PartialState{
		Phase:  &phase,
		Files:  &emptyFiles,
		Errors: &emptyErrors,
	}))
}

func (r *Room) onSpawnTick() {
	// Cancellation and firing can race; re-check the phase before acting.
	if r.state.Phase != engine.PhasePlaying {
		return
	}
	work := r.state.Clone()
	spawned, ok := engine.SpawnDefect(work, r.rnd)
	if !ok {
		return
	}
	lost := len(work.Errors) >= work.ErrorThreshold
	if lost {
		if err := work.EndRound(); err != nil {
			return
		}
	}
	if !r.commit(work) {
		return
	}

	file := r.state.FindFile(spawned.File)
	r.broadcast(protocol.NewErrorSpawned(*spawned, file.Content, protocol.PartialState{
		Files:  &r.state.Files,
		Errors: protocol.ErrorViews(r.state.Errors),
	}))
	if lost {
		r.finishRound(false)
	}
}

func (r *Room) onStabilityTick() {
	if r.state.Phase != engine.PhasePlaying {
		return
	}
	viewing := make(map[string]string, len(r.presences))
	for id, p := range r.presences {
		viewing[id] = p.File
	}
	work := r.state.Clone()
	if !engine.TickStability(work, viewing, time.Now()) {
		return
	}
	if !r.commit(work) {
		return
	}
	r.broadcast(protocol.NewStateUpdate(protocol.PartialState{Players: r.state.Players}))
}

func (r *Room) onSurvivalTimeout() {
	if r.state.Phase != engine.PhasePlaying {
		return
	}
	work := r.state.Clone()
	if err := work.EndRound(); err != nil {
		return
	}
	if !r.commit(work) {
		return
	}
	r.finishRound(true)
}

// finishRound cancels all three timers atomically with the phase transition
// and announces the result. Caller has already committed the gameover state.
func (r *Room) finishRound(won bool) {
	r.stopTimers()
	phase := r.state.Phase
	r.broadcast(protocol.NewGameOver(won, protocol.PartialState{Phase: &phase}))
	r.log.Info("round over", zap.Bool("won", won), zap.Int("errors", len(r.state.Errors)))
}
