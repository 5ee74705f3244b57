package game

import (
	"slices"
	"sync"

	"github.com/JakobPriesner/GeoGuesser/internal/catalog"
	"github.com/samber/lo"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInRound
	PhaseRoundResults
)

func (p Phase) String() string {
	switch p {
	case PhaseInRound:
		return "in-round"
	case PhaseRoundResults:
		return "round-results"
	default:
		return "lobby"
	}
}

const noGuessSummary = "--"

// Palette assigns colors to players in join order.
var Palette = []string{
	"#ef8354", "#2e4057", "#4f5d75", "#58a4b0",
	"#a9c25d", "#73628a", "#7e8d85", "#5085a5",
	"#ce796b", "#666a86", "#687864", "#f67e7d",
}

type Settings struct {
	GameMode      string
	RoundDuration int
	TotalRounds   int
	ResultDelay   int
}

type Player struct {
	ID         string
	Username   string
	Score      int
	IsHost     bool
	Color      string
	LastGuess  string
	HasGuessed bool
}

type Guess struct {
	Lat             float64
	Lng             float64
	HasPosition     bool
	SelectedCountry string
	WithinTarget    bool
}

type ledgerEntry struct {
	guess   Guess
	correct bool
}

// Room is one game instance. Every field is guarded by mu; methods with the
// Locked suffix expect the caller to hold it.
type Room struct {
	mu sync.Mutex

	code      string
	settings  Settings
	players   []*Player
	hostID    string
	joinCount int

	active        bool
	phase         Phase
	round         int
	target        *catalog.Location
	usedLocations []int
	ledger        map[string]ledgerEntry
	ledgerOrder   []string
	timeRemaining int

	timer    Timer
	timerSeq uint64
	closed   bool
}

func newRoom(code string, settings Settings) *Room {
	return &Room{
		code:     code,
		settings: settings,
		ledger:   make(map[string]ledgerEntry),
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) addPlayerLocked(id, username string) *Player {
	p := &Player{
		ID:        id,
		Username:  username,
		Color:     Palette[r.joinCount%len(Palette)],
		LastGuess: noGuessSummary,
	}
	if len(r.players) == 0 {
		p.IsHost = true
		r.hostID = id
	}
	r.joinCount++
	r.players = append(r.players, p)
	return p
}

func (r *Room) playerLocked(id string) *Player {
	p, _ := lo.Find(r.players, func(p *Player) bool { return p.ID == id })
	return p
}

func (r *Room) usernameTakenLocked(username string) bool {
	return lo.ContainsBy(r.players, func(p *Player) bool { return p.Username == username })
}

// removePlayerLocked drops id from the roster. When the host leaves, the
// earliest remaining joiner becomes host.
func (r *Room) removePlayerLocked(id string) (removed *Player, newHost *Player) {
	idx := slices.IndexFunc(r.players, func(p *Player) bool { return p.ID == id })
	if idx < 0 {
		return nil, nil
	}
	removed = r.players[idx]
	r.players = slices.Delete(r.players, idx, idx+1)

	if removed.IsHost && len(r.players) > 0 {
		r.players[0].IsHost = true
		r.hostID = r.players[0].ID
		newHost = r.players[0]
	}
	return removed, newHost
}

func (r *Room) allGuessedLocked() bool {
	return len(r.players) > 0 && lo.EveryBy(r.players, func(p *Player) bool { return p.HasGuessed })
}

func (r *Room) clearLedgerLocked() {
	r.ledger = make(map[string]ledgerEntry)
	r.ledgerOrder = nil
}

// resetGameLocked returns the room to a fresh pre-game state, keeping the roster.
func (r *Room) resetGameLocked() {
	r.round = 0
	r.usedLocations = nil
	r.target = nil
	r.timeRemaining = 0
	r.clearLedgerLocked()
	for _, p := range r.players {
		p.Score = 0
		p.HasGuessed = false
		p.LastGuess = noGuessSummary
	}
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	// Invalidate callbacks that already fired and are waiting on mu.
	r.timerSeq++
}

func (r *Room) ackLocked(playerID string) RoomAck {
	return RoomAck{
		RoomCode:      r.code,
		IsHost:        r.hostID == playerID,
		GameMode:      r.settings.GameMode,
		RoundDuration: r.settings.RoundDuration,
		TotalRounds:   r.settings.TotalRounds,
		ResultDelay:   r.settings.ResultDelay,
	}
}

func (r *Room) playerListLocked() PlayerListData {
	return PlayerListData{Players: lo.Map(r.players, func(p *Player, _ int) PlayerView {
		return PlayerView{
			Username:  p.Username,
			IsHost:    p.IsHost,
			Color:     p.Color,
			Score:     p.Score,
			LastGuess: p.LastGuess,
		}
	})}
}

// leaderboardLocked sorts by score descending; ties keep join order.
func (r *Room) leaderboardLocked() []LeaderboardEntry {
	entries := lo.Map(r.players, func(p *Player, _ int) LeaderboardEntry {
		return LeaderboardEntry{
			Username:  p.Username,
			Score:     p.Score,
			LastGuess: p.LastGuess,
			Color:     p.Color,
		}
	})
	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		return b.Score - a.Score
	})
	return entries
}

// roomSnapshot is a point-in-time copy of a room's state.
type roomSnapshot struct {
	Code          string
	Settings      Settings
	Players       []Player
	HostID        string
	Active        bool
	Phase         Phase
	Round         int
	TimeRemaining int
	Target        *catalog.Location
	UsedLocations []int
	Guesses       int
	Closed        bool
}

func (r *Room) snapshot() roomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := roomSnapshot{
		Code:          r.code,
		Settings:      r.settings,
		Players:       lo.Map(r.players, func(p *Player, _ int) Player { return *p }),
		HostID:        r.hostID,
		Active:        r.active,
		Phase:         r.phase,
		Round:         r.round,
		TimeRemaining: r.timeRemaining,
		UsedLocations: append([]int(nil), r.usedLocations...),
		Guesses:       len(r.ledger),
		Closed:        r.closed,
	}
	if r.target != nil {
		t := *r.target
		s.Target = &t
	}
	return s
}
