package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"quizwire/internal/events"
	"quizwire/internal/identity"
	"quizwire/internal/rooms"
	"quizwire/internal/wshub"
)

// clientMessage is the JSON frame received from clients.
type clientMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type roomInfo struct {
	RoomCode string         `json:"roomCode"`
	Settings rooms.Settings `json:"settings"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	who, err := s.wsIdentity(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	client := &wshub.Client{
		ConnID: uuid.New().String(),
		Conn:   conn,
		Send:   make(chan []byte, 32),
		Logger: s.Logger,
	}

	ctx := r.Context()
	go client.WritePump(ctx)

	s.Logger.Info("ws connected", "conn", client.ConnID, "name", who.DisplayName())
	defer s.disconnect(client)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		s.dispatch(ctx, client, who, data)
	}
}

// wsIdentity resolves the connection's identity before any room call. A
// token query parameter wins; a bare name parameter joins as a guest.
func (s *Server) wsIdentity(r *http.Request) (identity.Identity, error) {
	q := r.URL.Query()
	if token := q.Get("token"); token != "" {
		return s.Auth.IdentityFromToken(token)
	}
	if name := q.Get("name"); name != "" {
		// Round-trip through a guest token so the same validation applies.
		token, err := s.Auth.GuestToken(name)
		if err != nil {
			return nil, err
		}
		return s.Auth.IdentityFromToken(token)
	}
	return nil, errors.New("no token or name supplied")
}

func (s *Server) dispatch(ctx context.Context, client *wshub.Client, who identity.Identity, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: "Malformed message."})
		return
	}

	switch msg.Action {
	case "createRoom":
		s.createRoom(client, who, msg.Data)
	case "joinRoom":
		s.joinRoom(client, who, msg.Data)
	case "startGame":
		s.startGame(client)
	case "answer":
		s.answer(client, msg.Data)
	default:
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: "Unknown action."})
	}
}

func (s *Server) createRoom(client *wshub.Client, who identity.Identity, data []byte) {
	var req struct {
		Settings settingsRequest `json:"settings"`
	}
	// Settings are optional; an absent payload means defaults.
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: "Malformed message."})
			return
		}
	}

	room, err := s.Registry.Create(client.ConnID, who, s.clampSettings(req.Settings))
	if err != nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(err)})
		return
	}

	if hub, ok := room.Emitter().(*wshub.Hub); ok {
		hub.Register(client)
	}
	client.Enqueue(events.RoomCreated, roomInfo{RoomCode: room.Code, Settings: room.Settings()})
	room.BroadcastLobby()
}

func (s *Server) joinRoom(client *wshub.Client, who identity.Identity, data []byte) {
	var req struct {
		RoomCode string `json:"roomCode"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.RoomCode == "" {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: "Malformed message."})
		return
	}

	room := s.Registry.Get(req.RoomCode)
	if room == nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(rooms.ErrRoomNotFound)})
		return
	}

	// Register with the hub first so the join broadcasts reach this
	// connection too.
	hub, _ := room.Emitter().(*wshub.Hub)
	if hub != nil {
		hub.Register(client)
	}
	if _, err := s.Registry.Join(req.RoomCode, client.ConnID, who); err != nil {
		if hub != nil {
			hub.Remove(client.ConnID)
		}
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(err)})
		return
	}
	client.Enqueue(events.JoinedRoom, roomInfo{RoomCode: room.Code, Settings: room.Settings()})
}

func (s *Server) startGame(client *wshub.Client) {
	room := s.Registry.RoomFor(client.ConnID)
	if room == nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(rooms.ErrNotMember)})
		return
	}
	if err := room.Start(client.ConnID); err != nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(err)})
	}
}

func (s *Server) answer(client *wshub.Client, data []byte) {
	var req struct {
		AnswerIndex int `json:"answerIndex"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: "Malformed message."})
		return
	}
	if req.AnswerIndex < 0 || req.AnswerIndex > 3 {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: "Invalid answer."})
		return
	}

	room := s.Registry.RoomFor(client.ConnID)
	if room == nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(rooms.ErrNotMember)})
		return
	}
	if err := room.SubmitAnswer(client.ConnID, req.AnswerIndex); err != nil {
		client.Enqueue(events.ErrorMessage, events.ErrorPayload{Text: errorText(err)})
	}
}

func (s *Server) disconnect(client *wshub.Client) {
	if room := s.Registry.RoomFor(client.ConnID); room != nil {
		if hub, ok := room.Emitter().(*wshub.Hub); ok {
			hub.Remove(client.ConnID)
		}
	}
	s.Registry.Leave(client.ConnID)
	client.Conn.Close(websocket.StatusNormalClosure, "")
	s.Logger.Info("ws disconnected", "conn", client.ConnID)
}

type settingsRequest struct {
	TimeLimit       int    `json:"timeLimit"`
	QuestionCount   int    `json:"questionCount"`
	Category        string `json:"category"`
	Difficulty      string `json:"difficulty"`
	ShowLeaderboard *bool  `json:"showLeaderboard"`
}

func (s *Server) clampSettings(req settingsRequest) rooms.Settings {
	difficulty := req.Difficulty
	switch difficulty {
	case "easy", "medium", "hard":
	default:
		difficulty = "" // no filter
	}

	out := rooms.Settings{
		TimeLimit:       s.Cfg.DefaultTimeLimit,
		QuestionCount:   s.Cfg.DefaultQuestions,
		Category:        req.Category,
		Difficulty:      difficulty,
		ShowLeaderboard: true,
	}
	if req.TimeLimit != 0 {
		out.TimeLimit = min(max(req.TimeLimit, 5), 60)
	}
	if req.QuestionCount != 0 {
		out.QuestionCount = min(max(req.QuestionCount, 1), 50)
	}
	if req.ShowLeaderboard != nil {
		out.ShowLeaderboard = *req.ShowLeaderboard
	}
	return out
}

// errorText maps room errors to the text shown to the requesting player.
func errorText(err error) string {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return "Room not found."
	case errors.Is(err, rooms.ErrRoomNotJoinable), errors.Is(err, rooms.ErrAlreadyStarted):
		return "Game already started."
	case errors.Is(err, rooms.ErrAlreadyInRoom):
		return "Already in a room."
	case errors.Is(err, rooms.ErrNotHost):
		return "Only the host can start the game."
	case errors.Is(err, rooms.ErrNoQuestions):
		return "No questions available for those settings."
	case errors.Is(err, rooms.ErrRoomNotPlaying):
		return "No question is open right now."
	case errors.Is(err, rooms.ErrNotMember):
		return "You are not in a room."
	case errors.Is(err, rooms.ErrAlreadyAnswered):
		return "Answer already recorded."
	default:
		return "Something went wrong."
	}
}
