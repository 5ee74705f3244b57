package main

import (
	"github.com/JakobPriesner/GeoGuesser/internal/config"
	"github.com/JakobPriesner/GeoGuesser/internal/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info().
		Str("env", map[bool]string{true: "production", false: "development"}[cfg.IsProduction]).
		Msg("🌍 starting GeoGuesser")

	app, err := newApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise")
	}
	log.Info().Int("game_modes", len(app.Catalog.ListCategories())).Msg("📍 locations loaded")

	app.startServer(setupRouter(app))
}
