/* config.go
 * Loads the application configuration from a .env file and the environment
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cyber-scout/api/logic"
)

const (
	defaultMongoDB     = "cyber_scout"
	defaultHTTPAddr    = ":8080"
	defaultTBARate     = 5.0
	defaultTBABurst    = 5
	defaultRecordLimit = logic.DefaultRecordLimit
)

// Config is every setting the commands read
type Config struct {
	DiscordToken string
	TBAKey       string
	// TBAWebhookSecret verifies webhook signatures, empty accepts unsigned webhooks
	TBAWebhookSecret string
	TBARatePerSec    float64
	TBABurst         int

	MongoURI string
	MongoDB  string

	// Event is the TBA event key loaded at start up, e.g. 2025nhsal
	Event string
	// District and HomeTeam pick the events $event offers
	District string
	HomeTeam int

	Rubric     string
	RubricFile string

	HTTPAddr    string
	LogLevel    slog.Level
	RecordLimit int
}

// Load reads .env when it exists then the environment. Values already set in the environment win over .env
// Preconditions: Receives the .env paths to try, none means ./.env
// Postconditions: Returns the config, or an error naming the first malformed value
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		TBAKey:           os.Getenv("TBA_API_KEY"),
		TBAWebhookSecret: os.Getenv("TBA_WEBHOOK_SECRET"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          envOr("MONGO_DB", defaultMongoDB),
		Event:            strings.ToLower(os.Getenv("SCOUT_EVENT")),
		District:         strings.ToLower(os.Getenv("SCOUT_DISTRICT")),
		Rubric:           os.Getenv("SCOUT_RUBRIC"),
		RubricFile:       os.Getenv("SCOUT_RUBRIC_FILE"),
		HTTPAddr:         envOr("HTTP_ADDR", defaultHTTPAddr),
	}

	var err error
	if cfg.TBARatePerSec, err = envFloat("TBA_RATE_PER_SEC", defaultTBARate); err != nil {
		return Config{}, err
	}
	if cfg.TBABurst, err = envInt("TBA_BURST", defaultTBABurst); err != nil {
		return Config{}, err
	}
	if cfg.HomeTeam, err = envInt("SCOUT_TEAM", 0); err != nil {
		return Config{}, err
	}
	if cfg.RecordLimit, err = envInt("SCOUT_RECORD_LIMIT", defaultRecordLimit); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return Config{}, err
	}
	if cfg.TBARatePerSec <= 0 {
		return Config{}, fmt.Errorf("TBA_RATE_PER_SEC must be positive")
	}
	return cfg, nil
}

// Rubrics returns the rubric selected by SCOUT_RUBRIC from the built in table plus SCOUT_RUBRIC_FILE
func (c Config) Rubrics() (logic.Rubric, error) {
	set, err := logic.LoadRubrics(c.RubricFile)
	if err != nil {
		return logic.Rubric{}, err
	}
	return set.Lookup(c.Rubric)
}

// ParseLevel reads a slog level name, an empty string is info
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to stderr at the configured level
func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
