package main

import (
	"fmt"
	"time"

	"github.com/JakobPriesner/GeoGuesser/internal/catalog"
	"github.com/JakobPriesner/GeoGuesser/internal/config"
	"github.com/JakobPriesner/GeoGuesser/internal/game"
	"github.com/JakobPriesner/GeoGuesser/internal/gateway"
	"github.com/rs/zerolog"
)

// App holds the process-wide services shared by the HTTP handlers.
type App struct {
	Config    config.Config
	Catalog   *catalog.Catalog
	Rooms     *game.Registry
	Hub       *gateway.Hub
	Log       zerolog.Logger
	StartTime time.Time
}

type GameMode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Health struct {
	Status      string `json:"status"`
	Env         string `json:"env"`
	Uptime      string `json:"uptime"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
	GameModes   int    `json:"game_modes"`
	Timestamp   string `json:"timestamp"`
}

func newApp(cfg config.Config, log zerolog.Logger) (*App, error) {
	locations, err := catalog.Load(cfg.LocationsFile)
	if err != nil {
		return nil, err
	}
	if !locations.HasCategory(cfg.DefaultGameMode) {
		return nil, fmt.Errorf("default game mode %q: %w", cfg.DefaultGameMode, catalog.ErrUnknownCategory)
	}

	hub := gateway.NewHub(gateway.Options{
		Defaults: gateway.Defaults{
			GameMode:         cfg.DefaultGameMode,
			RoundDuration:    cfg.DefaultRoundDuration,
			TotalRounds:      cfg.DefaultTotalRounds,
			ResultDelay:      cfg.DefaultResultDelay,
			MaxRoundDuration: cfg.MaxRoundDuration,
			MaxTotalRounds:   cfg.MaxTotalRounds,
			MaxResultDelay:   cfg.MaxResultDelay,
			KnownMode:        locations.HasCategory,
		},
		EventRate:    float64(cfg.EventRateLimit),
		EventBurst:   cfg.EventRateBurst,
		PingInterval: cfg.PingInterval,
		Logger:       log.With().Str("component", "gateway").Logger(),
	})

	rooms := game.NewRegistry(game.WithRegistryLogger(log.With().Str("component", "registry").Logger()))
	coordinator := game.NewCoordinator(rooms, locations, hub,
		game.WithLogger(log.With().Str("component", "game").Logger()))
	hub.Bind(coordinator)

	return &App{
		Config:    cfg,
		Catalog:   locations,
		Rooms:     rooms,
		Hub:       hub,
		Log:       log,
		StartTime: time.Now(),
	}, nil
}
