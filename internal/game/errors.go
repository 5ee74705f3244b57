package game

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameInProgress = errors.New("game already in progress")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrNotHost        = errors.New("only the host can perform this action")
	ErrRoundNotActive = errors.New("no round in progress")
	ErrAlreadyInRoom  = errors.New("connection already bound to a room")
	ErrNotInRoom      = errors.New("player is not in this room")
)

var clientMessages = map[error]string{
	ErrRoomNotFound:   "Room not found",
	ErrGameInProgress: "Game already in progress",
	ErrUsernameTaken:  "Username already taken",
	ErrNotHost:        "Only the host can start the game",
	ErrRoundNotActive: "No round in progress",
	ErrAlreadyInRoom:  "You are already in a room",
	ErrNotInRoom:      "You are not in this room",
}

// ClientMessage is the text sent to a player in the error event.
func ClientMessage(err error) string {
	for sentinel, msg := range clientMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Something went wrong"
}
