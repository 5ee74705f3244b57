package game

import (
	"fmt"
	"math"
	"time"

	"github.com/JakobPriesner/GeoGuesser/internal/catalog"
	"github.com/JakobPriesner/GeoGuesser/internal/scoring"
	"github.com/rs/zerolog"
)

// Emitter delivers a message to one connected player. It is called while a
// room lock is held and must not block.
type Emitter interface {
	Send(playerID string, msg Message)
}

type LocationPicker interface {
	PickUnusedLocation(category string, used []int) (catalog.Location, int, error)
}

// Coordinator drives the room lifecycle: lobby, timed rounds, round results
// and game over. All room mutation happens under the room's lock.
type Coordinator struct {
	rooms     *Registry
	locations LocationPicker
	emitter   Emitter
	scheduler Scheduler
	tick      time.Duration
	log       zerolog.Logger
}

type CoordinatorOption func(*Coordinator)

func WithScheduler(s Scheduler) CoordinatorOption {
	return func(c *Coordinator) { c.scheduler = s }
}

func WithLogger(l zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.log = l }
}

func NewCoordinator(rooms *Registry, locations LocationPicker, emitter Emitter, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		rooms:     rooms,
		locations: locations,
		emitter:   emitter,
		scheduler: NewClockScheduler(),
		tick:      time.Second,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) CreateRoom(playerID, username string, settings Settings) *Room {
	room := c.rooms.CreateRoom(playerID, username, settings)

	room.mu.Lock()
	defer room.mu.Unlock()
	c.sendLocked(playerID, EventRoomCreated, room.ackLocked(playerID))
	c.broadcastLocked(room, EventPlayerList, room.playerListLocked())
	return room
}

func (c *Coordinator) JoinRoom(playerID, code, username string) (*Room, error) {
	room, err := c.rooms.JoinRoom(code, playerID, username)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	c.sendLocked(playerID, EventRoomJoined, room.ackLocked(playerID))
	c.broadcastLocked(room, EventPlayerList, room.playerListLocked())
	return room, nil
}

// StartGame moves a lobby into its first round. Host only.
func (c *Coordinator) StartGame(code, playerID string) error {
	room, err := c.lockMember(code, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.hostID != playerID {
		return ErrNotHost
	}
	if room.active {
		return ErrGameInProgress
	}

	c.log.Info().Str("room", code).Int("rounds", room.settings.TotalRounds).Msg("🎮 game started")
	c.beginGameLocked(room)
	return nil
}

// RestartGame starts a new game in the same room when issued by the host.
// Anyone else is treated as rejoining the room they are already in.
func (c *Coordinator) RestartGame(code, playerID string) error {
	room, err := c.lockMember(code, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.hostID != playerID {
		return c.rejoinLocked(room, playerID)
	}

	c.log.Info().Str("room", code).Msg("🔄 game restarted")
	c.beginGameLocked(room)
	return nil
}

// Rejoin re-sends the room acknowledgement to a player who is already a
// member, as long as no game is running.
func (c *Coordinator) Rejoin(code, playerID string) error {
	room, err := c.lockMember(code, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()
	return c.rejoinLocked(room, playerID)
}

func (c *Coordinator) rejoinLocked(room *Room, playerID string) error {
	if room.active {
		return ErrGameInProgress
	}
	c.sendLocked(playerID, EventRoomJoined, room.ackLocked(playerID))
	c.broadcastLocked(room, EventPlayerList, room.playerListLocked())
	return nil
}

// SubmitGuess scores the first guess a player makes in the current round.
// Later guesses in the same round are ignored without error.
func (c *Coordinator) SubmitGuess(code, playerID string, guess Guess) error {
	room, err := c.lockMember(code, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if !room.active || room.phase != PhaseInRound || room.target == nil {
		return ErrRoundNotActive
	}

	player := room.playerLocked(playerID)
	if player.HasGuessed {
		c.log.Debug().Str("room", code).Str("player", player.Username).Msg("duplicate guess ignored")
		return nil
	}

	target := room.target
	mode := room.settings.GameMode

	correct := mode == scoring.CountriesMode &&
		scoring.CountryMatches(target.Name, target.EnglishName, guess.SelectedCountry, guess.WithinTarget)

	outcome := scoring.Outcome{Guessed: guess.HasPosition || correct, CountryMatch: correct}
	if !correct && guess.HasPosition {
		outcome.DistanceKm = scoring.DistanceKm(guess.Lat, guess.Lng, target.Lat, target.Lng)
	}
	result := scoring.Score(mode, outcome)

	player.HasGuessed = true
	player.Score += result.Points
	switch {
	case result.Correct:
		player.LastGuess = scoring.LabelCorrect
	case outcome.Guessed:
		player.LastGuess = fmt.Sprintf("%d km", int(math.Round(result.DistanceKm)))
	default:
		player.LastGuess = noGuessSummary
	}

	room.ledger[playerID] = ledgerEntry{guess: guess, correct: correct}
	room.ledgerOrder = append(room.ledgerOrder, playerID)

	c.log.Debug().
		Str("room", code).
		Str("player", player.Username).
		Int("points", result.Points).
		Float64("distance_km", result.DistanceKm).
		Msg("guess scored")

	c.sendLocked(playerID, EventGuessResult, GuessResultData{
		Distance:         int(math.Round(result.DistanceKm)),
		Points:           result.Points,
		IsCorrectCountry: correct,
		Label:            result.Label,
	})
	c.broadcastLocked(room, EventPlayerGuessed, PlayerGuessedData{Username: player.Username, HasGuessed: true})
	c.broadcastLeaderboardLocked(room)

	if room.allGuessedLocked() {
		c.log.Info().Str("room", code).Int("round", room.round).Msg("🎉 all players guessed, ending round early")
		c.endRoundLocked(room)
	}
	return nil
}

// Leave removes a departing player, migrating host or deleting the room as
// needed, and ends the round if everyone left has already guessed.
func (c *Coordinator) Leave(code, playerID string) {
	res, err := c.rooms.RemovePlayer(code, playerID)
	if err != nil || res.Emptied {
		return
	}

	room, ok := c.rooms.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return
	}

	c.broadcastLocked(room, EventPlayerList, room.playerListLocked())
	if room.active {
		c.broadcastLeaderboardLocked(room)
	}
	if room.phase == PhaseInRound && room.allGuessedLocked() {
		c.log.Info().Str("room", code).Int("round", room.round).Msg("remaining players all guessed, ending round")
		c.endRoundLocked(room)
	}
}

// SendLeaderboard unicasts the current standings to playerID.
func (c *Coordinator) SendLeaderboard(code, playerID string) error {
	room, err := c.lockMember(code, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()
	c.sendLocked(playerID, EventLeaderboardUpdate, LeaderboardData{Leaderboard: room.leaderboardLocked()})
	return nil
}

// lockMember returns the room locked, or an error with no lock held.
func (c *Coordinator) lockMember(code, playerID string) (*Room, error) {
	room, ok := c.rooms.Get(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if room.playerLocked(playerID) == nil {
		room.mu.Unlock()
		return nil, ErrNotInRoom
	}
	return room, nil
}

func (c *Coordinator) beginGameLocked(room *Room) {
	room.stopTimerLocked()
	room.resetGameLocked()
	room.active = true
	c.broadcastLeaderboardLocked(room)
	c.nextRoundLocked(room)
}

func (c *Coordinator) nextRoundLocked(room *Room) {
	room.stopTimerLocked()
	room.round++

	if room.round > room.settings.TotalRounds {
		c.endGameLocked(room)
		return
	}

	for _, p := range room.players {
		p.HasGuessed = false
		p.LastGuess = noGuessSummary
	}
	room.clearLedgerLocked()

	loc, idx, err := c.locations.PickUnusedLocation(room.settings.GameMode, room.usedLocations)
	if err != nil {
		c.log.Warn().Err(err).Str("room", room.code).Str("mode", room.settings.GameMode).Msg("no location available, ending game")
		c.endGameLocked(room)
		return
	}
	if idx >= 0 {
		room.usedLocations = append(room.usedLocations, idx)
	}

	room.target = &loc
	room.timeRemaining = room.settings.RoundDuration
	room.phase = PhaseInRound
	c.scheduleLocked(room, c.tick, c.tickLocked)

	c.log.Info().Str("room", room.code).Int("round", room.round).Int("total", room.settings.TotalRounds).Msg("🎲 round started")

	c.broadcastLocked(room, EventNewRound, NewRoundData{
		Round:         room.round,
		TotalRounds:   room.settings.TotalRounds,
		Location:      TargetName{Name: loc.Name},
		TimeRemaining: room.timeRemaining,
		GameMode:      room.settings.GameMode,
	})
	c.broadcastLeaderboardLocked(room)
}

func (c *Coordinator) tickLocked(room *Room) {
	if room.phase != PhaseInRound {
		return
	}
	room.timeRemaining--
	c.broadcastLocked(room, EventTimeUpdate, TimeUpdateData{TimeRemaining: room.timeRemaining})

	if room.timeRemaining <= 0 {
		c.log.Info().Str("room", room.code).Int("round", room.round).Msg("⏰ time's up")
		c.endRoundLocked(room)
		return
	}
	c.scheduleLocked(room, c.tick, c.tickLocked)
}

func (c *Coordinator) endRoundLocked(room *Room) {
	if room.phase != PhaseInRound || room.target == nil {
		return
	}
	room.stopTimerLocked()
	room.phase = PhaseRoundResults

	guesses := make([]RevealedGuess, 0, len(room.ledgerOrder))
	for _, id := range room.ledgerOrder {
		p := room.playerLocked(id)
		if p == nil {
			continue
		}
		entry := room.ledger[id]
		g := RevealedGuess{
			Username:         p.Username,
			Color:            p.Color,
			SelectedCountry:  entry.guess.SelectedCountry,
			IsCorrectCountry: entry.correct,
		}
		if entry.guess.HasPosition {
			lat, lng := entry.guess.Lat, entry.guess.Lng
			g.Lat, g.Lng = &lat, &lng
		}
		guesses = append(guesses, g)
	}

	c.log.Info().Str("room", room.code).Int("round", room.round).Int("guesses", len(guesses)).Msg("🏁 round ended")

	c.broadcastLocked(room, EventRoundEnded, RoundEndedData{
		ActualLocation: RevealedLocation{Name: room.target.Name, Lat: room.target.Lat, Lng: room.target.Lng},
		Guesses:        guesses,
		Leaderboard:    room.leaderboardLocked(),
		ResultDelay:    room.settings.ResultDelay,
	})

	c.scheduleLocked(room, time.Duration(room.settings.ResultDelay)*time.Second, c.nextRoundLocked)
}

func (c *Coordinator) endGameLocked(room *Room) {
	room.stopTimerLocked()

	c.log.Info().Str("room", room.code).Msg("🏆 game over")
	c.broadcastLocked(room, EventGameOver, LeaderboardData{Leaderboard: room.leaderboardLocked()})

	room.resetGameLocked()
	room.active = false
	room.phase = PhaseLobby
}

// scheduleLocked replaces the room's timer. A callback whose sequence number
// is stale by the time it gets the lock does nothing.
func (c *Coordinator) scheduleLocked(room *Room, d time.Duration, fn func(*Room)) {
	room.stopTimerLocked()
	seq := room.timerSeq
	room.timer = c.scheduler.AfterFunc(d, func() {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || room.timerSeq != seq {
			return
		}
		room.timer = nil
		fn(room)
	})
}

func (c *Coordinator) sendLocked(playerID, event string, data any) {
	c.emitter.Send(playerID, Message{Type: event, Data: data})
}

func (c *Coordinator) broadcastLocked(room *Room, event string, data any) {
	msg := Message{Type: event, Data: data}
	for _, p := range room.players {
		c.emitter.Send(p.ID, msg)
	}
}

func (c *Coordinator) broadcastLeaderboardLocked(room *Room) {
	c.broadcastLocked(room, EventLeaderboardUpdate, LeaderboardData{Leaderboard: room.leaderboardLocked()})
}
