package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Berlin -> Munich is roughly 504 km.
	d := DistanceKm(52.52, 13.405, 48.1351, 11.582)
	assert.InDelta(t, 504, d, 5)

	assert.Equal(t, 0.0, DistanceKm(10, 10, 10, 10))

	// Paris -> New York is roughly 5837 km; symmetric.
	assert.InDelta(t, 5837, DistanceKm(48.8566, 2.3522, 40.7128, -74.006), 15)
	assert.InDelta(t, DistanceKm(40.7128, -74.006, 48.8566, 2.3522), DistanceKm(48.8566, 2.3522, 40.7128, -74.006), 1e-9)
}

func TestDistanceKm_BadInputIsClamped(t *testing.T) {
	d := DistanceKm(math.NaN(), 0, 10, 10)
	assert.Equal(t, MaxDistanceKm, d)
}

func TestDistanceKm_AntipodeIsClamped(t *testing.T) {
	d := DistanceKm(0, 0, 0, 180)
	assert.False(t, math.IsNaN(d))
	assert.Equal(t, MaxDistanceKm, d)

	d = DistanceKm(90, 0, -90, 0)
	assert.Equal(t, MaxDistanceKm, d)
}

func TestClampDistance(t *testing.T) {
	assert.Equal(t, MaxDistanceKm, ClampDistance(math.NaN()))
	assert.Equal(t, MaxDistanceKm, ClampDistance(math.Inf(1)))
	assert.Equal(t, 0.0, ClampDistance(-3))
	assert.Equal(t, 123.0, ClampDistance(123))
}

func TestScore_Tiers(t *testing.T) {
	cases := []struct {
		mode   string
		km     float64
		points int
	}{
		{"german-cities", 0, 100},
		{"german-cities", 24.9, 100},
		{"german-cities", 25, 75},
		{"german-cities", 99, 50},
		{"german-cities", 150, 25},
		{"german-cities", 5000, 10},
		{"european-cities", 140, 75},
		{"capitals", 1400, 25},
		{"world-landmarks", 699, 50},
		{"countries", 299, 100},
		{"countries", 2499, 25},
		{"countries", 2500, 10},
		{"unknown-mode", 299, 100},
		{"unknown-mode", 20000, 10},
	}
	for _, c := range cases {
		res := Score(c.mode, Outcome{Guessed: true, DistanceKm: c.km})
		assert.Equal(t, c.points, res.Points, "%s at %.1f km", c.mode, c.km)
		assert.False(t, res.Correct)
		assert.NotEmpty(t, res.Label)
	}
}

func TestScore_MonotonicNonIncreasing(t *testing.T) {
	for mode := range thresholds {
		prev := math.MaxInt
		for km := 0.0; km <= MaxDistanceKm; km += 10 {
			p := Score(mode, Outcome{Guessed: true, DistanceKm: km}).Points
			assert.LessOrEqual(t, p, prev, mode)
			prev = p
		}
	}
}

func TestScore_CountryMatchAndNoGuess(t *testing.T) {
	res := Score("countries", Outcome{Guessed: true, CountryMatch: true, DistanceKm: 900})
	assert.Equal(t, MaxPoints, res.Points)
	assert.True(t, res.Correct)
	assert.Equal(t, LabelCorrect, res.Label)
	assert.Zero(t, res.DistanceKm)

	res = Score("countries", Outcome{})
	assert.Zero(t, res.Points)
	assert.Equal(t, LabelNoGuess, res.Label)
}

func TestScore_ClampsDistance(t *testing.T) {
	res := Score("capitals", Outcome{Guessed: true, DistanceKm: math.NaN()})
	assert.Equal(t, MaxDistanceKm, res.DistanceKm)
	assert.Equal(t, 10, res.Points)
}

func TestTiersForMode(t *testing.T) {
	tiers := tiersFor("german-cities")
	assert.Len(t, tiers, 5)
	assert.True(t, math.IsInf(tiers[len(tiers)-1].MaxDistanceKm, 1))
	for i := 1; i < len(tiers); i++ {
		assert.Greater(t, tiers[i].MaxDistanceKm, tiers[i-1].MaxDistanceKm)
	}
	assert.Equal(t, tiersFor("countries"), tiersFor("whatever"))
}

func TestCountryMatches(t *testing.T) {
	assert.True(t, CountryMatches("Deutschland", "Germany", "Deutschland", false))
	assert.True(t, CountryMatches("Deutschland", "Germany", "Germany", false))
	assert.False(t, CountryMatches("Deutschland", "Germany", "germany", false))
	assert.False(t, CountryMatches("Deutschland", "", "", false))
	assert.True(t, CountryMatches("Deutschland", "", "Austria", true))
}
