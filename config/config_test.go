/* config_test.go
 * Contains unit tests for config.go
 */

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyber-scout/api/logic"
)

var configKeys = []string{
	"DISCORD_TOKEN", "TBA_API_KEY", "TBA_WEBHOOK_SECRET", "TBA_RATE_PER_SEC", "TBA_BURST", "MONGO_URI", "MONGO_DB",
	"SCOUT_EVENT", "SCOUT_DISTRICT", "SCOUT_TEAM", "SCOUT_RUBRIC", "SCOUT_RUBRIC_FILE", "SCOUT_RECORD_LIMIT",
	"HTTP_ADDR", "LOG_LEVEL",
}

// clearEnv blanks every key Load reads. t.Setenv restores the previous values after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// region Load

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, defaultMongoDB, cfg.MongoDB)
	assert.Equal(t, defaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, defaultTBARate, cfg.TBARatePerSec)
	assert.Equal(t, defaultTBABurst, cfg.TBABurst)
	assert.Equal(t, logic.DefaultRecordLimit, cfg.RecordLimit)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Zero(t, cfg.HomeTeam)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("SCOUT_EVENT", "2025NHSAL")
	t.Setenv("SCOUT_DISTRICT", "2025NE")
	t.Setenv("SCOUT_TEAM", "1234")
	t.Setenv("TBA_RATE_PER_SEC", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "2025nhsal", cfg.Event)
	assert.Equal(t, "2025ne", cfg.District)
	assert.Equal(t, 1234, cfg.HomeTeam)
	assert.Equal(t, 2.5, cfg.TBARatePerSec)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TBA_API_KEY=from-file\nMONGO_DB=scouting\n"), 0o600))
	t.Setenv("MONGO_DB", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TBAKey)
	assert.Equal(t, "from-env", cfg.MongoDB)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"SCOUT_TEAM":         "frc1234",
		"TBA_RATE_PER_SEC":   "fast",
		"TBA_BURST":          "1.5",
		"SCOUT_RECORD_LIMIT": "five",
		"LOG_LEVEL":          "loud",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_NonPositiveRate(t *testing.T) {
	clearEnv(t)
	t.Setenv("TBA_RATE_PER_SEC", "0")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

// endregion

// region Rubrics

func TestRubrics_Default(t *testing.T) {
	rubric, err := Config{}.Rubrics()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultRubric().Name, rubric.Name)
}

func TestRubrics_Unknown(t *testing.T) {
	_, err := Config{Rubric: "no-such-rubric"}.Rubrics()
	assert.Error(t, err)
}

func TestRubrics_MissingFile(t *testing.T) {
	_, err := Config{RubricFile: filepath.Join(t.TempDir(), "rubrics.yaml")}.Rubrics()
	assert.Error(t, err)
}

// endregion

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
