package game

// Inbound event names.
const (
	EventCreateRoom         = "createRoom"
	EventJoinRoom           = "joinRoom"
	EventStartGame          = "startGame"
	EventSubmitGuess        = "submitGuess"
	EventRestartGame        = "restartGame"
	EventRequestLeaderboard = "requestLeaderboard"
)

// Outbound event names.
const (
	EventConnected         = "connected"
	EventRoomCreated       = "roomCreated"
	EventRoomJoined        = "roomJoined"
	EventPlayerList        = "playerList"
	EventNewRound          = "newRound"
	EventTimeUpdate        = "timeUpdate"
	EventPlayerGuessed     = "playerGuessed"
	EventGuessResult       = "guessResult"
	EventRoundEnded        = "roundEnded"
	EventGameOver          = "gameOver"
	EventLeaderboardUpdate = "leaderboardUpdate"
	EventError             = "error"
)

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type RoomAck struct {
	RoomCode      string `json:"roomCode"`
	IsHost        bool   `json:"isHost"`
	GameMode      string `json:"gameMode"`
	RoundDuration int    `json:"roundDuration"`
	TotalRounds   int    `json:"totalRounds"`
	ResultDelay   int    `json:"resultDelay"`
}

type PlayerView struct {
	Username  string `json:"username"`
	IsHost    bool   `json:"isHost"`
	Color     string `json:"color"`
	Score     int    `json:"score"`
	LastGuess string `json:"lastGuess"`
}

type PlayerListData struct {
	Players []PlayerView `json:"players"`
}

type LeaderboardEntry struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	LastGuess string `json:"lastGuess"`
	Color     string `json:"color"`
}

type LeaderboardData struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type TargetName struct {
	Name string `json:"name"`
}

type NewRoundData struct {
	Round         int        `json:"round"`
	TotalRounds   int        `json:"totalRounds"`
	Location      TargetName `json:"location"`
	TimeRemaining int        `json:"timeRemaining"`
	GameMode      string     `json:"gameMode"`
}

type TimeUpdateData struct {
	TimeRemaining int `json:"timeRemaining"`
}

type PlayerGuessedData struct {
	Username   string `json:"username"`
	HasGuessed bool   `json:"hasGuessed"`
}

type GuessResultData struct {
	Distance         int    `json:"distance"`
	Points           int    `json:"points"`
	IsCorrectCountry bool   `json:"isCorrectCountry"`
	Label            string `json:"label"`
}

type RevealedLocation struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type RevealedGuess struct {
	Username         string   `json:"username"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	Color            string   `json:"color"`
	SelectedCountry  string   `json:"selectedCountry,omitempty"`
	IsCorrectCountry bool     `json:"isCorrectCountry"`
}

type RoundEndedData struct {
	ActualLocation RevealedLocation   `json:"actualLocation"`
	Guesses        []RevealedGuess    `json:"guesses"`
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	ResultDelay    int                `json:"resultDelay"`
}

type ErrorData struct {
	Message string `json:"message"`
}
