package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string
	LogPretty    bool

	LocationsFile string

	DefaultGameMode      string
	DefaultRoundDuration int
	DefaultTotalRounds   int
	DefaultResultDelay   int
	MaxRoundDuration     int
	MaxTotalRounds       int
	MaxResultDelay       int

	EventRateLimit int
	EventRateBurst int

	AllowedOrigins  []string
	PingInterval    time.Duration
	ShutdownTimeout time.Duration
	APICacheAge     time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = map[bool]string{true: "info", false: "debug"}[isProduction]
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	defaultMode := os.Getenv("DEFAULT_GAME_MODE")
	if defaultMode == "" {
		defaultMode = "german-cities"
	}

	maxRoundDuration := GetEnvPositiveInt("MAX_ROUND_DURATION", 600)
	maxTotalRounds := GetEnvPositiveInt("MAX_TOTAL_ROUNDS", 50)
	maxResultDelay := GetEnvPositiveInt("MAX_RESULT_DELAY", 120)

	return Config{
		Port:                 port,
		IsProduction:         isProduction,
		LogLevel:             logLevel,
		LogPretty:            GetEnvBool("LOG_PRETTY", !isProduction),
		LocationsFile:        os.Getenv("LOCATIONS_FILE"),
		DefaultGameMode:      defaultMode,
		DefaultRoundDuration: min(GetEnvPositiveInt("DEFAULT_ROUND_DURATION", 60), maxRoundDuration),
		DefaultTotalRounds:   min(GetEnvPositiveInt("DEFAULT_TOTAL_ROUNDS", 10), maxTotalRounds),
		DefaultResultDelay:   min(GetEnvPositiveInt("DEFAULT_RESULT_DELAY", 10), maxResultDelay),
		MaxRoundDuration:     maxRoundDuration,
		MaxTotalRounds:       maxTotalRounds,
		MaxResultDelay:       maxResultDelay,
		EventRateLimit:       GetEnvInt("EVENT_RATE_LIMIT", 10),
		EventRateBurst:       GetEnvInt("EVENT_RATE_BURST", 20),
		AllowedOrigins:       GetEnvList("ALLOWED_ORIGINS", []string{"*"}),
		PingInterval:         GetEnvDuration("PING_INTERVAL", 30*time.Second),
		ShutdownTimeout:      GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		APICacheAge:          GetEnvDuration("API_CACHE_AGE", 5*time.Minute),
	}
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Dur("default", fallback).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func GetEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Int("default", fallback).Msg("invalid int, using default")
		return fallback
	}
	return i
}

// GetEnvPositiveInt is GetEnvInt with values of zero or below replaced by
// fallback.
func GetEnvPositiveInt(key string, fallback int) int {
	i := GetEnvInt(key, fallback)
	if i <= 0 {
		log.Warn().Str("key", key).Int("value", i).Int("default", fallback).Msg("non-positive int, using default")
		return fallback
	}
	return i
}

func GetEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Bool("default", fallback).Msg("invalid bool, using default")
		return fallback
	}
	return b
}

// GetEnvList splits a comma separated variable, dropping empty items.
func GetEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
