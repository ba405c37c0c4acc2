package rooms

import (
	"context"
	"time"

	"quizwire/internal/questions"
)

// Emitter delivers events to the sockets joined to a room. Rooms are
// transport-agnostic; the websocket hub implements this.
type Emitter interface {
	Broadcast(event string, payload any)
	Send(connID, event string, payload any)
}

// Catalog supplies an ordered question set for a game. It may return fewer
// questions than requested; an empty result means the game cannot start.
type Catalog interface {
	LoadQuestions(ctx context.Context, category, difficulty string, count int) ([]questions.Question, error)
}

// Recorder durably records game history. Every call from a room is
// best-effort: failures are logged and never stall gameplay. A userID of 0
// denotes a guest.
type Recorder interface {
	CreateGame(ctx context.Context, roomCode string, hostUserID int64, settings Settings) (int64, error)
	AddParticipant(ctx context.Context, gameID, userID int64, name string) error
	UpdateGameStatus(ctx context.Context, gameID int64, status string, startedAt, endedAt *time.Time) error
	RecordAnswer(ctx context.Context, gameID, userID, questionID int64, optionIndex int, correct bool, timeTakenMs int64) error
	UpdateFinalScore(ctx context.Context, gameID, userID int64, score int) error
}
