package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
)

//go:embed locations.json
var defaultLocations []byte

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyCategory   = errors.New("category has no locations")
)

type Location struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	EnglishName string  `json:"english_name,omitempty"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	locations  map[string][]Location
	categories []string
	intn       func(n int) int
}

func New(locations map[string][]Location) *Catalog {
	cats := lo.Keys(locations)
	sort.Strings(cats)
	return &Catalog{
		locations:  locations,
		categories: cats,
		intn:       rand.IntN,
	}
}

// Load reads a dataset from path, or the embedded dataset when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultLocations
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read locations %s: %w", path, err)
		}
		data = raw
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var locations map[string][]Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("parse locations: %w", err)
	}
	return New(locations), nil
}

func (c *Catalog) ListCategories() []string {
	return append([]string(nil), c.categories...)
}

func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.locations[category]
	return ok
}

func (c *Catalog) ListLocations(category string) []Location {
	return append([]Location(nil), c.locations[category]...)
}

// All returns a copy of the full dataset keyed by category.
func (c *Catalog) All() map[string][]Location {
	return lo.MapValues(c.locations, func(locs []Location, _ string) []Location {
		return append([]Location(nil), locs...)
	})
}

// PickUnusedLocation returns a random location of category whose index is not
// in used, together with its index. Once every location has been used it
// wraps around and picks from the whole category.
func (c *Catalog) PickUnusedLocation(category string, used []int) (Location, int, error) {
	locs, ok := c.locations[category]
	if !ok {
		return Location{}, -1, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if len(locs) == 0 {
		return Location{}, -1, fmt.Errorf("%w: %q", ErrEmptyCategory, category)
	}

	usedSet := lo.SliceToMap(used, func(i int) (int, struct{}) { return i, struct{}{} })
	available := lo.Filter(lo.Range(len(locs)), func(i int, _ int) bool {
		_, taken := usedSet[i]
		return !taken
	})

	if len(available) == 0 {
		idx := c.intn(len(locs))
		return locs[idx], idx, nil
	}

	idx := available[c.intn(len(available))]
	return locs[idx], idx, nil
}

// FormatCategoryName turns "german-cities" into "German Cities".
func FormatCategoryName(category string) string {
	words := strings.Split(category, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
