package gateway

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/JakobPriesner/GeoGuesser/internal/game"
)

const anonymous = "Anonymous"

// Defaults fills in room settings a client left out or sent malformed.
type Defaults struct {
	GameMode      string
	RoundDuration int
	TotalRounds   int
	ResultDelay   int

	MaxRoundDuration int
	MaxTotalRounds   int
	MaxResultDelay   int

	// KnownMode reports whether a game mode exists. Nil accepts any mode.
	KnownMode func(mode string) bool
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type createRoomRequest struct {
	Username string
	Settings game.Settings
}

type joinRoomRequest struct {
	Username string
	RoomCode string
}

func decodeFields(raw json.RawMessage) map[string]any {
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields
	}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return map[string]any{}
	}
	return fields
}

func decodeCreateRoom(raw json.RawMessage, d Defaults) createRoomRequest {
	f := decodeFields(raw)

	mode := stringField(f, "gameMode")
	if mode == "" || (d.KnownMode != nil && !d.KnownMode(mode)) {
		mode = d.GameMode
	}

	return createRoomRequest{
		Username: username(f),
		Settings: game.Settings{
			GameMode:      mode,
			RoundDuration: positiveInt(f["roundDuration"], d.RoundDuration, d.MaxRoundDuration),
			TotalRounds:   positiveInt(f["totalRounds"], d.TotalRounds, d.MaxTotalRounds),
			ResultDelay:   positiveInt(f["resultDelay"], d.ResultDelay, d.MaxResultDelay),
		},
	}
}

func decodeJoinRoom(raw json.RawMessage) joinRoomRequest {
	f := decodeFields(raw)

	code := strings.TrimSpace(stringField(f, "roomCode"))
	if code == "" {
		// numeric codes typed into a number field arrive as JSON numbers
		if n, ok := coerceInt(f["roomCode"]); ok {
			code = strconv.Itoa(n)
		}
	}
	return joinRoomRequest{Username: username(f), RoomCode: code}
}

func decodeGuess(raw json.RawMessage) game.Guess {
	f := decodeFields(raw)

	lat, latOK := coerceFloat(f["lat"])
	lng, lngOK := coerceFloat(f["lng"])
	within, _ := f["isWithinTargetCountry"].(bool)

	g := game.Guess{
		SelectedCountry: stringField(f, "selectedCountry"),
		WithinTarget:    within,
	}
	if latOK && lngOK && lat >= -90 && lat <= 90 {
		g.Lat, g.Lng, g.HasPosition = lat, lng, true
	}
	return g
}

// username is kept verbatim since names are matched exactly. A blank name
// becomes anonymous.
func username(f map[string]any) string {
	name := stringField(f, "username")
	if strings.TrimSpace(name) == "" {
		return anonymous
	}
	return name
}

func stringField(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}

// positiveInt coerces v to a positive int, falling back to def and capping
// at max when max is positive.
func positiveInt(v any, def, max int) int {
	n, ok := coerceInt(v)
	if !ok || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

func coerceInt(v any) (int, bool) {
	f, ok := coerceFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
