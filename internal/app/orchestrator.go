package app

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"auxwheel/internal/domain"
	"auxwheel/internal/stats"
)

// Settings holds the orchestrator's phase timings
type Settings struct {
	VotingDuration  time.Duration
	PlayingDuration time.Duration
	RatingDuration  time.Duration
	GraceDelay      time.Duration
}

// DefaultSettings returns the default phase timings
func DefaultSettings() Settings {
	return Settings{
		VotingDuration:  30 * time.Second,
		PlayingDuration: 240 * time.Second,
		RatingDuration:  30 * time.Second,
		GraceDelay:      2 * time.Second,
	}
}

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	ParticipantID() string
	Close() error
}

// Orchestrator owns the session and drives the phase state machine. Every
// mutation — inbound participant actions and phase clock callbacks alike —
// goes through the one session mutex, so writes are strictly interleaved
// and the tallies never need their own locking.
type Orchestrator struct {
	session  *domain.Session
	settings Settings
	catalog  *Catalog
	recorder stats.Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	timerGen uint64

	clock clockwork.Clock
	phase *PhaseClock

	// countdownPhase is the phase the armed deadline belongs to; empty
	// during grace delays, which have a deadline but no visible countdown.
	countdownPhase domain.Phase

	clients   map[string]ClientConnection
	clientsMu sync.RWMutex

	events    chan *domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewOrchestrator creates an idle session orchestrator and draws the first
// song set
func NewOrchestrator(settings Settings, catalog *Catalog, recorder stats.Recorder, clock clockwork.Clock, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		session:  domain.NewSession(),
		settings: settings,
		catalog:  catalog,
		recorder: recorder,
		logger:   logger,
		rng:      rand.New(rand.NewSource(clock.Now().UnixNano())),
		clock:    clock,
		phase:    NewPhaseClock(clock),
		clients:  make(map[string]ClientConnection),
		events:   make(chan *domain.Event, 100),
		done:     make(chan struct{}),
	}

	o.session.SongSet = o.catalog.Draw(o.rng)

	go o.eventLoop()

	return o
}

// Join adds a participant (idempotent on reconnect), bootstraps their stats
// record, and sends them the current song set. Returns the normalized name.
func (o *Orchestrator) Join(id, name string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	p, rejoined := o.session.Join(id, name, o.clock.Now())
	o.recorder.EnsurePlayer(id, p.Name)

	o.queueEvent(domain.NewTargetEvent(domain.EventInit, id, &domain.SongsPayload{Songs: o.session.SongSet}))
	o.broadcastStateLocked()

	o.logger.Info("participant joined", "id", id, "name", p.Name, "rejoined", rejoined)
	return p.Name
}

// StartVoting begins the voting phase from idle
func (o *Orchestrator) StartVoting(callerID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.Has(callerID) {
		return domain.ErrUnknownParticipant
	}
	if o.session.Phase != domain.PhaseIdle {
		return domain.ErrInvalidPhase
	}

	o.beginVotingLocked(false)
	return nil
}

// Vote records or replaces the caller's vote for the next aux holder
func (o *Orchestrator) Vote(voterID, targetID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Phase != domain.PhaseVoting {
		return domain.ErrInvalidPhase
	}
	voter, ok := o.session.Get(voterID)
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if !o.session.Has(targetID) {
		return domain.ErrUnknownTarget
	}

	previous, had := o.session.Votes.Submit(voterID, targetID)
	voter.HasVoted = true

	o.broadcastStateLocked()

	// Best-effort stat mirror. A first vote counts toward the session
	// total; switching targets moves one received-vote between players;
	// re-voting the same target changes nothing.
	if !had {
		o.recorder.IncrementTotal(stats.TotalVotes)
	}
	if had && previous != targetID {
		o.recorder.UpdatePlayerStat(previous, stats.FieldVotesReceived, stats.Decrement)
	}
	if !had || previous != targetID {
		o.recorder.UpdatePlayerStat(targetID, stats.FieldVotesReceived, stats.Increment)
	}

	return nil
}

// Rate records the caller's keep/pass decision on the current aux holder
func (o *Orchestrator) Rate(participantID string, decision domain.Decision) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Phase != domain.PhaseRating || o.session.Aux == nil {
		return domain.ErrInvalidPhase
	}
	if !decision.Valid() {
		return domain.ErrInvalidDecision
	}
	p, ok := o.session.Get(participantID)
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if o.session.IsAux(participantID) {
		return domain.ErrNotAuthorized
	}
	if p.HasRated {
		return domain.ErrAlreadyRated
	}

	p.HasRated = true
	p.Decision = decision
	o.session.Ratings.Submit(participantID, decision)

	auxID := o.session.Aux.ID
	if decision == domain.DecisionKeep {
		o.recorder.IncrementTotal(stats.TotalKeeps)
		o.recorder.UpdatePlayerStat(auxID, stats.FieldKeeps, stats.Increment)
	} else {
		o.recorder.IncrementTotal(stats.TotalPasses)
		o.recorder.UpdatePlayerStat(auxID, stats.FieldPasses, stats.Increment)
	}

	o.broadcastStateLocked()
	return nil
}

// RemoveRating withdraws a previously submitted decision, returning the
// caller to the unrated state
func (o *Orchestrator) RemoveRating(participantID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Phase != domain.PhaseRating || o.session.Aux == nil {
		return domain.ErrInvalidPhase
	}
	p, ok := o.session.Get(participantID)
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if o.session.IsAux(participantID) {
		return domain.ErrNotAuthorized
	}
	if !p.HasRated {
		return domain.ErrNotRated
	}

	prior, _ := o.session.Ratings.Remove(participantID)
	p.HasRated = false
	p.Decision = ""

	auxID := o.session.Aux.ID
	if prior == domain.DecisionKeep {
		o.recorder.DecrementTotal(stats.TotalKeeps)
		o.recorder.UpdatePlayerStat(auxID, stats.FieldKeeps, stats.Decrement)
	} else {
		o.recorder.DecrementTotal(stats.TotalPasses)
		o.recorder.UpdatePlayerStat(auxID, stats.FieldPasses, stats.Decrement)
	}

	o.broadcastStateLocked()
	return nil
}

// RequestNewSongs redraws the song set (aux only)
func (o *Orchestrator) RequestNewSongs(callerID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.IsAux(callerID) {
		return domain.ErrNotAuthorized
	}

	o.session.SongSet = o.catalog.Draw(o.rng)
	o.queueEvent(domain.NewEvent(domain.EventNewSongs, &domain.SongsPayload{Songs: o.session.SongSet}))
	return nil
}

// Play broadcasts the song the aux holder just started, stamped with the
// server clock for client-side sync
func (o *Orchestrator) Play(callerID string, song domain.Song) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.IsAux(callerID) {
		return domain.ErrNotAuthorized
	}

	o.queueEvent(domain.NewEvent(domain.EventNow, &domain.NowPayload{
		Song:      song,
		Timestamp: o.clock.Now().UnixMilli(),
	}))
	return nil
}

// IsAux reports whether the id currently holds the aux
func (o *Orchestrator) IsAux(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.IsAux(id)
}

// ParticipantName returns the display name for a roster member
func (o *Orchestrator) ParticipantName(id string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.session.Get(id)
	if !ok {
		return "", false
	}
	return p.Name, true
}

// Now returns the orchestrator's current wall-clock time
func (o *Orchestrator) Now() time.Time {
	return o.clock.Now()
}

// Disconnect removes a participant and drives the recovery transitions:
// empty roster resets to idle, a departing aux holder triggers a fresh vote
// after the grace delay
func (o *Orchestrator) Disconnect(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.Has(id) {
		return
	}

	wasAux, empty := o.session.Leave(id)
	o.logger.Info("participant left", "id", id, "wasAux", wasAux, "remaining", len(o.session.Roster))

	if empty {
		o.resetLocked()
		return
	}

	if wasAux && (o.session.Phase == domain.PhasePlaying || o.session.Phase == domain.PhaseRating) {
		o.scheduleGraceLocked(func() {
			o.beginVotingLocked(true)
		})
		o.queueEvent(domain.NewEvent(domain.EventAuxLeft, &domain.AuxLeftPayload{
			Message: "The AUX holder has left! Voting for a new AUX...",
		}))
		return
	}

	o.broadcastStateLocked()
}

// Snapshot returns the full state broadcast a late joiner would receive
func (o *Orchestrator) Snapshot() *domain.StatePayload {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Phase returns the current phase
func (o *Orchestrator) Phase() domain.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.Phase
}

// ParticipantCount returns the roster size
func (o *Orchestrator) ParticipantCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.session.Roster)
}

// beginVotingLocked starts a voting window. redrawSongs is set on the
// rounds that follow a pass or a departed aux, matching a fresh pick of
// candidate songs for the next holder.
func (o *Orchestrator) beginVotingLocked(redrawSongs bool) {
	o.session.Phase = domain.PhaseVoting
	o.session.Aux = nil
	o.session.ResetForVoting()

	if redrawSongs {
		o.session.SongSet = o.catalog.Draw(o.rng)
		o.queueEvent(domain.NewEvent(domain.EventInit, &domain.SongsPayload{Songs: o.session.SongSet}))
	}

	o.schedulePhaseLocked(domain.PhaseVoting, o.settings.VotingDuration, o.handleVotingDeadline)
	o.broadcastStateLocked()
	o.queueCountdownLocked(domain.PhaseVoting, o.settings.VotingDuration)
}

// handleVotingDeadline resolves the aux election when the voting window
// lapses
func (o *Orchestrator) handleVotingDeadline(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.timerGen || o.session.Phase != domain.PhaseVoting {
		return
	}

	chosenID, ok := o.resolveAuxLocked()
	if !ok {
		o.resetLocked()
		return
	}

	p, _ := o.session.Get(chosenID)
	o.session.Aux = &domain.AuxHolder{ID: chosenID, Name: p.Name}

	o.recorder.UpdatePlayerStat(chosenID, stats.FieldTimesAux, stats.Increment)
	o.recorder.PushAuxHistory(stats.AuxHistoryEntry{
		AuxID:     chosenID,
		AuxName:   p.Name,
		Timestamp: o.clock.Now(),
	})

	o.logger.Info("aux elected", "id", chosenID, "name", p.Name)
	o.beginPlayingLocked()
}

// resolveAuxLocked picks the next aux holder: the unique top vote-getter,
// a uniform pick among tied leaders (with a tie notice), or a uniform pick
// from the whole roster when nobody voted. Returns false only when the
// roster is empty.
func (o *Orchestrator) resolveAuxLocked() (string, bool) {
	counts := o.session.Votes.CountsSnapshot()

	// Votes can outlive their target when the target disconnects during
	// the window; only current members are electable.
	max := 0
	var winners []string
	for target, n := range counts {
		if !o.session.Has(target) {
			continue
		}
		switch {
		case n > max:
			max = n
			winners = []string{target}
		case n == max && max > 0:
			winners = append(winners, target)
		}
	}

	switch {
	case len(winners) == 1:
		return winners[0], true
	case len(winners) > 1:
		o.queueEvent(domain.NewEvent(domain.EventResult, domain.OutcomeTieElection))
		return winners[o.rng.Intn(len(winners))], true
	default:
		ids := o.session.ParticipantIDs()
		if len(ids) == 0 {
			return "", false
		}
		return ids[o.rng.Intn(len(ids))], true
	}
}

// beginPlayingLocked starts (or restarts) the aux holder's playback window
func (o *Orchestrator) beginPlayingLocked() {
	o.session.Phase = domain.PhasePlaying

	o.schedulePhaseLocked(domain.PhasePlaying, o.settings.PlayingDuration, o.handlePlayingDeadline)
	o.broadcastStateLocked()
	o.queueCountdownLocked(domain.PhasePlaying, o.settings.PlayingDuration)
}

// handlePlayingDeadline moves to rating when the playback window lapses
func (o *Orchestrator) handlePlayingDeadline(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.timerGen || o.session.Phase != domain.PhasePlaying {
		return
	}

	o.beginRatingLocked()
}

// beginRatingLocked starts the rating window with the aux auto-marked rated
func (o *Orchestrator) beginRatingLocked() {
	o.session.Phase = domain.PhaseRating
	o.session.ResetForRating()

	o.schedulePhaseLocked(domain.PhaseRating, o.settings.RatingDuration, o.handleRatingDeadline)
	o.broadcastStateLocked()
	o.queueCountdownLocked(domain.PhaseRating, o.settings.RatingDuration)
}

// handleRatingDeadline tallies the decisions, announces the outcome, and
// performs the follow-on transition after the grace delay so clients can
// show the result banner
func (o *Orchestrator) handleRatingDeadline(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.timerGen || o.session.Phase != domain.PhaseRating {
		return
	}

	outcome := o.session.Ratings.Resolve()
	o.logger.Info("rating resolved", "outcome", outcome)

	// The grace delay lets clients show the outcome banner before the
	// follow-on transition.
	o.scheduleGraceLocked(func() {
		switch outcome {
		case domain.OutcomePass:
			o.beginVotingLocked(true)
		default: // keep or draw: same aux plays again
			o.beginPlayingLocked()
		}
	})
	o.queueEvent(domain.NewEvent(domain.EventResult, outcome))
}

// resetLocked returns the session to idle, discarding any pending deadline,
// and draws a fresh song set for whoever shows up next
func (o *Orchestrator) resetLocked() {
	o.timerGen++
	o.phase.Stop()
	o.countdownPhase = ""

	o.session.Reset()
	o.session.SongSet = o.catalog.Draw(o.rng)

	o.broadcastStateLocked()
	o.logger.Info("session reset to idle")
}

// schedulePhaseLocked arms a visible phase deadline, superseding whatever
// was pending
func (o *Orchestrator) schedulePhaseLocked(phase domain.Phase, d time.Duration, handler func(gen uint64)) {
	o.timerGen++
	gen := o.timerGen
	o.countdownPhase = phase
	o.phase.Schedule(d, func() { handler(gen) })
}

// scheduleGraceLocked arms a short invisible deadline for a delayed
// transition. fn runs under the session mutex and only if nothing
// superseded it.
func (o *Orchestrator) scheduleGraceLocked(fn func()) {
	o.timerGen++
	gen := o.timerGen
	o.countdownPhase = ""
	o.phase.Schedule(o.settings.GraceDelay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if gen != o.timerGen {
			return
		}
		fn()
	})
}

// snapshotLocked builds the state payload, attaching the countdown only
// while a visible phase window is running
func (o *Orchestrator) snapshotLocked() *domain.StatePayload {
	var countdown *domain.CountdownInfo
	if o.countdownPhase != "" {
		countdown = &domain.CountdownInfo{
			Phase:            o.countdownPhase,
			SecondsRemaining: o.phase.RemainingSeconds(),
		}
	}
	return o.session.Snapshot(countdown)
}

func (o *Orchestrator) broadcastStateLocked() {
	o.queueEvent(domain.NewEvent(domain.EventState, o.snapshotLocked()))
}

func (o *Orchestrator) queueCountdownLocked(phase domain.Phase, d time.Duration) {
	o.queueEvent(domain.NewEvent(domain.EventCountdown, &domain.CountdownPayload{
		Phase:   phase,
		Seconds: int(d.Seconds()),
	}))
}

// RegisterClient registers a client connection for a participant
func (o *Orchestrator) RegisterClient(id string, client ClientConnection) {
	o.clientsMu.Lock()
	defer o.clientsMu.Unlock()
	o.clients[id] = client
}

// UnregisterClient removes a client connection
func (o *Orchestrator) UnregisterClient(id string) {
	o.clientsMu.Lock()
	defer o.clientsMu.Unlock()
	delete(o.clients, id)
}

// SendToAllExcept delivers a transport-level message to every client but
// one. Used for the aux control and cursor relays, which never touch
// session state.
func (o *Orchestrator) SendToAllExcept(exceptID string, message interface{}) {
	o.clientsMu.RLock()
	defer o.clientsMu.RUnlock()

	for id, client := range o.clients {
		if id == exceptID {
			continue
		}
		if err := client.Send(message); err != nil {
			o.logger.Debug("failed to send to client", "id", id, "error", err)
		}
	}
}

// queueEvent adds an event to the broadcast queue
func (o *Orchestrator) queueEvent(event *domain.Event) {
	select {
	case o.events <- event:
	default:
		o.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop drains the event queue and broadcasts to clients
func (o *Orchestrator) eventLoop() {
	for {
		select {
		case <-o.done:
			return
		case event := <-o.events:
			o.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to the appropriate clients
func (o *Orchestrator) broadcastEvent(event *domain.Event) {
	o.clientsMu.RLock()
	defer o.clientsMu.RUnlock()

	if event.TargetID != "" {
		if client, ok := o.clients[event.TargetID]; ok {
			if err := client.Send(event); err != nil {
				o.logger.Debug("failed to send to client", "id", event.TargetID, "error", err)
			}
		}
		return
	}

	for id, client := range o.clients {
		if event.ExceptID != "" && id == event.ExceptID {
			continue
		}
		if err := client.Send(event); err != nil {
			o.logger.Debug("failed to send to client", "id", id, "error", err)
		}
	}
}

// Close shuts down the orchestrator, cancels any pending deadline, and
// closes all client connections
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.done)
		o.phase.Stop()

		o.clientsMu.Lock()
		for _, client := range o.clients {
			client.Close()
		}
		o.clients = make(map[string]ClientConnection)
		o.clientsMu.Unlock()
	})
}
