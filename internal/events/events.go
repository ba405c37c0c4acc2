// Package events names the outbound events a room emits and the payloads
// they carry. The transport layer wraps them in its own envelope.
package events

const (
	RoomCreated     = "roomCreated"
	JoinedRoom      = "joinedRoom"
	LobbyPlayers    = "lobbyPlayers"
	GameStarted     = "gameStarted"
	Question        = "question"
	Timer           = "timer"
	QuestionSummary = "questionSummary"
	Scoreboard      = "scoreboard"
	GameOver        = "gameOver"
	ErrorMessage    = "errorMessage"
	System          = "system"
)

type LobbyPlayer struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

type QuestionPayload struct {
	Index      int      `json:"index"` // 1-based
	Total      int      `json:"total"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	TimeLimit  int      `json:"timeLimit"` // seconds
}

type TimerPayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type SummaryPayload struct {
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
	Index         int    `json:"index"`
	Total         int    `json:"total"`
	EndedEarly    bool   `json:"endedEarly"`
}

type ScoreEntry struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

type GameOverPayload struct {
	DurationMs     int64 `json:"durationMs"`
	TotalQuestions int   `json:"totalQuestions"`
}

type ErrorPayload struct {
	Text string `json:"text"`
}

type SystemPayload struct {
	Text string `json:"text"`
}
