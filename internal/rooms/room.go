package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"quizwire/internal/events"
	"quizwire/internal/identity"
	"quizwire/internal/metrics"
	"quizwire/internal/questions"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	// questionGap is the pause between a question summary and the next
	// question, giving clients time to render the summary.
	questionGap = 2 * time.Second

	catalogTimeout = 10 * time.Second
	persistTimeout = 5 * time.Second
)

// Settings are fixed once the game starts.
type Settings struct {
	TimeLimit       int    `json:"timeLimit"` // seconds per question
	QuestionCount   int    `json:"questionCount"`
	Category        string `json:"category,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`
	ShowLeaderboard bool   `json:"showLeaderboard"`
}

func DefaultSettings() Settings {
	return Settings{
		TimeLimit:       10,
		QuestionCount:   5,
		ShowLeaderboard: true,
	}
}

// Answer is one player's submission for one question. Correct is filled in
// when the round is graded.
type Answer struct {
	Option       int
	RemainingSec int
	TakenMs      int64
	Correct      bool
}

// Player is a room member. Owned by exactly one room for the duration of
// its membership.
type Player struct {
	ConnID   string
	Identity identity.Identity
	IsHost   bool
	Score    int
	answers  []*Answer // indexed by question cursor
}

// Room is the state machine for one game session. All fields below the
// mutex are guarded by it; every operation runs in mutual exclusion, so a
// single writer touches the room at a time.
type Room struct {
	Code      string
	CreatedAt time.Time

	emitter  Emitter
	catalog  Catalog
	recorder Recorder // nil when persistence is disabled
	logger   *slog.Logger

	mu          sync.Mutex
	status      Status
	hostConnID  string
	settings    Settings
	members     map[string]*Player
	order       []string // connection ids in join order
	questions   []questions.Question
	cursor      int
	answered    map[string]struct{}
	roundActive bool
	timerGen    uint64
	roundStart  time.Time
	secondsLeft int
	startedAt   time.Time
	gameID      int64 // persistence id; 0 if absent
}

func newRoom(code, hostConnID string, host identity.Identity, settings Settings, em Emitter, cat Catalog, rec Recorder, logger *slog.Logger) *Room {
	r := &Room{
		Code:       code,
		CreatedAt:  time.Now(),
		emitter:    em,
		catalog:    cat,
		recorder:   rec,
		logger:     logger,
		status:     StatusWaiting,
		hostConnID: hostConnID,
		settings:   settings,
		members:    make(map[string]*Player),
	}
	r.members[hostConnID] = &Player{ConnID: hostConnID, Identity: host, IsHost: true}
	r.order = append(r.order, hostConnID)
	return r
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) HostConnID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostConnID
}

func (r *Room) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) Emitter() Emitter {
	return r.emitter
}

// Start begins the game. Only the host may start, only from the waiting
// state. The catalog call can block, so it runs outside the room lock; the
// checks are repeated afterwards in case the room changed under it. An
// empty result leaves the room in waiting unchanged so the host can retry
// with different settings.
func (r *Room) Start(requesterConnID string) error {
	r.mu.Lock()
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	if requesterConnID != r.hostConnID {
		r.mu.Unlock()
		return ErrNotHost
	}
	settings := r.settings
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
	qs, err := r.catalog.LoadQuestions(ctx, settings.Category, settings.Difficulty, settings.QuestionCount)
	cancel()
	if err != nil {
		return fmt.Errorf("loading questions: %w", err)
	}
	if len(qs) == 0 {
		return ErrNoQuestions
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if requesterConnID != r.hostConnID {
		return ErrNotHost
	}

	r.questions = qs
	for _, p := range r.members {
		p.Score = 0
		p.answers = make([]*Answer, len(qs))
	}
	r.status = StatusPlaying
	r.cursor = 0
	r.startedAt = time.Now()
	metrics.GamesStarted.Inc()
	r.logger.Info("game started", "room", r.Code, "players", len(r.members), "questions", len(qs))

	r.recordGameStartLocked()

	r.emitter.Broadcast(events.GameStarted, nil)
	r.beginRoundLocked()
	return nil
}

// recordGameStartLocked kicks off the best-effort game record. Skipped
// entirely for guest hosts: there is no user row to reference.
func (r *Room) recordGameStartLocked() {
	if r.recorder == nil {
		return
	}
	host := r.members[r.hostConnID]
	reg, ok := host.Identity.(identity.Registered)
	if !ok {
		return
	}

	type participant struct {
		userID int64
		name   string
	}
	parts := make([]participant, 0, len(r.order))
	for _, connID := range r.order {
		p := r.members[connID]
		parts = append(parts, participant{identity.UserID(p.Identity), p.Identity.DisplayName()})
	}
	settings := r.settings
	startedAt := r.startedAt

	go func() {
		defer r.recoverPersist("gameStart")
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		gameID, err := r.recorder.CreateGame(ctx, r.Code, reg.ID, settings)
		if err != nil {
			r.logger.Error("persistence failed", "op", "createGame", "room", r.Code, "error", err)
			return
		}
		r.mu.Lock()
		r.gameID = gameID
		r.mu.Unlock()

		for _, p := range parts {
			if err := r.recorder.AddParticipant(ctx, gameID, p.userID, p.name); err != nil {
				r.logger.Error("persistence failed", "op", "addParticipant", "room", r.Code, "error", err)
			}
		}
		if err := r.recorder.UpdateGameStatus(ctx, gameID, string(StatusPlaying), &startedAt, nil); err != nil {
			r.logger.Error("persistence failed", "op", "updateGameStatus", "room", r.Code, "error", err)
		}
	}()
}

// SubmitAnswer records one player's answer for the current question. Time
// remaining is derived server-side from the round clock, never from the
// client. If this submission means every member has answered, the round
// ends immediately.
func (r *Room) SubmitAnswer(connID string, option int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying || !r.roundActive {
		return ErrRoomNotPlaying
	}
	p, ok := r.members[connID]
	if !ok {
		return ErrNotMember
	}
	if p.answers[r.cursor] != nil {
		return ErrAlreadyAnswered
	}

	p.answers[r.cursor] = &Answer{
		Option:       option,
		RemainingSec: r.secondsLeft,
		TakenMs:      time.Since(r.roundStart).Milliseconds(),
	}
	r.answered[connID] = struct{}{}
	metrics.AnswersAccepted.Inc()

	if len(r.answered) == len(r.members) {
		r.endRoundLocked(r.timerGen, true)
	}
	return nil
}

// BroadcastLobby re-sends the member list to the whole room.
func (r *Room) BroadcastLobby() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitter.Broadcast(events.LobbyPlayers, r.lobbyLocked())
}

// addMember joins a non-host player. Only possible while waiting.
func (r *Room) addMember(connID string, id identity.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return ErrRoomNotJoinable
	}
	r.members[connID] = &Player{ConnID: connID, Identity: id}
	r.order = append(r.order, connID)
	r.emitter.Broadcast(events.System, events.SystemPayload{Text: id.DisplayName() + " joined the room"})
	r.emitter.Broadcast(events.LobbyPlayers, r.lobbyLocked())
	return nil
}

// removeMember drops a player and returns the remaining member count. If
// the departing player was the host and the room is still waiting, the
// earliest-joined remaining member is promoted. If the departure leaves
// everyone else having answered, the round ends early.
func (r *Room) removeMember(connID string) (remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.members[connID]
	if !ok {
		return len(r.members)
	}
	delete(r.members, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	delete(r.answered, connID)

	if len(r.members) == 0 {
		return 0
	}

	// The host role only matters before the game starts; once playing, a
	// departed host is just a departed member.
	if p.IsHost && r.status == StatusWaiting {
		newHost := r.members[r.order[0]]
		newHost.IsHost = true
		r.hostConnID = newHost.ConnID
		r.emitter.Broadcast(events.System, events.SystemPayload{Text: "Host left. " + newHost.Identity.DisplayName() + " is the new host."})
	} else {
		r.emitter.Broadcast(events.System, events.SystemPayload{Text: p.Identity.DisplayName() + " left the room"})
	}
	r.emitter.Broadcast(events.LobbyPlayers, r.lobbyLocked())

	if r.roundActive && len(r.answered) == len(r.members) {
		r.endRoundLocked(r.timerGen, true)
	}
	return len(r.members)
}

// Close invalidates any pending countdown or inter-round callback. Called
// by the registry after the room has been removed from its indexes, so a
// stale callback can never observe a live room.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timerGen++
	r.roundActive = false
}

func (r *Room) beginRoundLocked() {
	if r.cursor >= len(r.questions) {
		r.finishLocked()
		return
	}
	r.answered = make(map[string]struct{})
	r.roundStart = time.Now()
	r.secondsLeft = r.settings.TimeLimit
	r.roundActive = true
	r.timerGen++
	gen := r.timerGen

	q := r.questions[r.cursor]
	r.emitter.Broadcast(events.Question, events.QuestionPayload{
		Index:      r.cursor + 1,
		Total:      len(r.questions),
		Question:   q.Text,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		TimeLimit:  r.settings.TimeLimit,
	})
	r.emitter.Broadcast(events.Timer, events.TimerPayload{SecondsRemaining: r.secondsLeft})

	go r.runCountdown(gen)
}

func (r *Room) runCountdown(gen uint64) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if r.tick(gen) {
			return
		}
	}
}

// tick advances the countdown by one second. Returns true when the round is
// over or this countdown has been superseded. A panic in a single tick is
// logged and does not stop the countdown.
func (r *Room) tick(gen uint64) (done bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("timer tick panic", "room", r.Code, "panic", p)
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.timerGen || r.status != StatusPlaying {
		return true
	}
	r.secondsLeft--
	r.emitter.Broadcast(events.Timer, events.TimerPayload{SecondsRemaining: r.secondsLeft})
	if r.secondsLeft <= 0 {
		r.endRoundLocked(gen, false)
		return true
	}
	return false
}

// endRoundLocked finishes the current round: grades every member's answer,
// broadcasts the summary, and schedules the next round. The generation
// token makes it run exactly once per round no matter whether the timeout
// or a full response triggers it first: the caller presents the token it
// captured at round begin, and the first arrival increments the live value,
// so the loser of the race sees a stale token and returns.
func (r *Room) endRoundLocked(gen uint64, early bool) {
	if r.status != StatusPlaying || gen != r.timerGen {
		return
	}
	r.timerGen++
	r.roundActive = false

	q := r.questions[r.cursor]
	idx := r.cursor
	for _, connID := range r.order {
		p := r.members[connID]
		ans := p.answers[idx]
		if ans == nil {
			continue
		}
		ans.Correct = ans.Option == q.Correct
		if ans.Correct {
			p.Score += Score(true, ans.RemainingSec, r.settings.TimeLimit)
		}
		if reg, isReg := p.Identity.(identity.Registered); isReg && r.gameID != 0 {
			gameID, userID, a := r.gameID, reg.ID, *ans
			r.persist("recordAnswer", func(ctx context.Context) error {
				return r.recorder.RecordAnswer(ctx, gameID, userID, q.ID, a.Option, a.Correct, a.TakenMs)
			})
		}
	}

	r.emitter.Broadcast(events.QuestionSummary, events.SummaryPayload{
		CorrectAnswer: q.Correct,
		Explanation:   q.Explanation,
		Index:         idx + 1,
		Total:         len(r.questions),
		EndedEarly:    early,
	})
	if r.settings.ShowLeaderboard {
		r.emitter.Broadcast(events.Scoreboard, r.scoreboardLocked())
	}

	r.cursor++
	if r.cursor >= len(r.questions) {
		r.finishLocked()
		return
	}

	next := r.timerGen
	time.AfterFunc(questionGap, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.status != StatusPlaying || next != r.timerGen {
			return
		}
		r.beginRoundLocked()
	})
}

func (r *Room) finishLocked() {
	r.status = StatusFinished
	r.roundActive = false
	r.timerGen++
	elapsed := time.Since(r.startedAt)

	r.emitter.Broadcast(events.Scoreboard, r.scoreboardLocked())
	r.emitter.Broadcast(events.GameOver, events.GameOverPayload{
		DurationMs:     elapsed.Milliseconds(),
		TotalQuestions: len(r.questions),
	})
	metrics.GamesFinished.Inc()
	r.logger.Info("game finished", "room", r.Code, "questions", len(r.questions), "duration", elapsed.Round(time.Millisecond))

	if r.gameID == 0 {
		return
	}
	gameID := r.gameID
	endedAt := time.Now()
	type finalScore struct {
		userID int64
		score  int
	}
	var finals []finalScore
	for _, connID := range r.order {
		p := r.members[connID]
		if reg, ok := p.Identity.(identity.Registered); ok {
			finals = append(finals, finalScore{reg.ID, p.Score})
		}
	}
	r.persist("finishGame", func(ctx context.Context) error {
		if err := r.recorder.UpdateGameStatus(ctx, gameID, string(StatusFinished), nil, &endedAt); err != nil {
			return err
		}
		for _, f := range finals {
			if err := r.recorder.UpdateFinalScore(ctx, gameID, f.userID, f.score); err != nil {
				return err
			}
		}
		return nil
	})
}

// lobbyLocked lists members in join order.
func (r *Room) lobbyLocked() []events.LobbyPlayer {
	list := make([]events.LobbyPlayer, 0, len(r.order))
	for _, connID := range r.order {
		p := r.members[connID]
		list = append(list, events.LobbyPlayer{Name: p.Identity.DisplayName(), IsHost: p.IsHost})
	}
	return list
}

// scoreboardLocked lists members sorted by score descending, ties broken by
// join order.
func (r *Room) scoreboardLocked() []events.ScoreEntry {
	list := make([]events.ScoreEntry, 0, len(r.order))
	for _, connID := range r.order {
		p := r.members[connID]
		list = append(list, events.ScoreEntry{Name: p.Identity.DisplayName(), Score: p.Score, IsHost: p.IsHost})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
	return list
}

// persist runs a best-effort persistence call in the background. Failures
// are logged and never reach the game cycle.
func (r *Room) persist(op string, fn func(ctx context.Context) error) {
	if r.recorder == nil {
		return
	}
	go func() {
		defer r.recoverPersist(op)
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.logger.Error("persistence failed", "op", op, "room", r.Code, "error", err)
		}
	}()
}

func (r *Room) recoverPersist(op string) {
	if p := recover(); p != nil {
		r.logger.Error("persistence panic", "op", op, "room", r.Code, "panic", p)
	}
}
