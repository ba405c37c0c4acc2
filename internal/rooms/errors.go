package rooms

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotJoinable = errors.New("game already started")
	ErrAlreadyInRoom   = errors.New("connection already in a room")
	ErrNotHost         = errors.New("only the host can start the game")
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNoQuestions     = errors.New("no questions available for these settings")
	ErrRoomNotPlaying  = errors.New("room is not playing")
	ErrNotMember       = errors.New("not a member of this room")
	ErrAlreadyAnswered = errors.New("already answered this question")
)
