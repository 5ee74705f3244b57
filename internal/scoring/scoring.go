package scoring

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	EarthRadiusKm = 6371.0
	// MaxDistanceKm caps distances to roughly half the circumference.
	MaxDistanceKm = 20000.0

	MaxPoints = 100

	CountriesMode = "countries"

	LabelCorrect = "Correct!"
	LabelNoGuess = "no guess"
)

type Tier struct {
	MaxDistanceKm float64
	Points        int
	Label         string
}

// Outcome is what a single guess produced before scoring.
type Outcome struct {
	Guessed      bool
	CountryMatch bool
	DistanceKm   float64
}

type Result struct {
	Points     int
	Label      string
	DistanceKm float64
	Correct    bool
}

var tierPoints = []struct {
	points int
	label  string
}{
	{100, "Perfect!"},
	{75, "Great!"},
	{50, "Good"},
	{25, "Not bad"},
	{10, "Way off"},
}

var thresholds = map[string][4]float64{
	"german-cities":   {25, 50, 100, 200},
	"european-cities": {50, 150, 300, 600},
	"world-landmarks": {100, 300, 700, 1500},
	"capitals":        {100, 300, 700, 1500},
	CountriesMode:     {300, 600, 1200, 2500},
}

var tables = buildTables()

func buildTables() map[string][]Tier {
	out := make(map[string][]Tier, len(thresholds))
	for mode, th := range thresholds {
		tiers := make([]Tier, 0, len(tierPoints))
		for i, tp := range tierPoints {
			limit := math.Inf(1)
			if i < len(th) {
				limit = th[i]
			}
			tiers = append(tiers, Tier{MaxDistanceKm: limit, Points: tp.points, Label: tp.label})
		}
		out[mode] = tiers
	}
	return out
}

// tiersFor returns the ascending tier table of mode. Unknown modes share the
// countries table.
func tiersFor(mode string) []Tier {
	if t, ok := tables[mode]; ok {
		return t
	}
	return tables[CountriesMode]
}

// Score maps a guess outcome to points. A country match always wins max
// points; otherwise the first tier whose limit exceeds the distance applies.
func Score(mode string, o Outcome) Result {
	if !o.Guessed {
		return Result{Label: LabelNoGuess}
	}
	if o.CountryMatch {
		return Result{Points: MaxPoints, Label: LabelCorrect, Correct: true}
	}

	d := ClampDistance(o.DistanceKm)
	tiers := tiersFor(mode)
	for _, tier := range tiers {
		if d < tier.MaxDistanceKm {
			return Result{Points: tier.Points, Label: tier.Label, DistanceKm: d}
		}
	}
	last := tiers[len(tiers)-1]
	return Result{Points: last.Points, Label: last.Label, DistanceKm: d}
}

// CountryMatches reports whether selected names the target country, either
// exactly by its name or its English name, or through the client's
// within-boundary flag.
func CountryMatches(targetName, targetEnglishName, selected string, withinTarget bool) bool {
	if withinTarget {
		return true
	}
	if selected == "" {
		return false
	}
	return selected == targetName || (targetEnglishName != "" && selected == targetEnglishName)
}

// DistanceKm is the great-circle distance on a sphere of EarthRadiusKm,
// clamped to [0, MaxDistanceKm].
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	angle := s2.LatLngFromDegrees(lat1, lng1).Distance(s2.LatLngFromDegrees(lat2, lng2))
	return ClampDistance(angle.Radians() * EarthRadiusKm)
}

func ClampDistance(km float64) float64 {
	if math.IsNaN(km) || math.IsInf(km, 1) || km > MaxDistanceKm {
		return MaxDistanceKm
	}
	if km < 0 {
		return 0
	}
	return km
}
