package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamazak-mc/algo-cg/engine"
)

// clearEnv blanks every variable Load reads, so the test is immune to the
// surrounding process environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LISTEN_ADDR", "LOG_LEVEL", "CARD_COLORS", "MAX_CARD_NUMBER", "INITIAL_DRAW_NUM"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, engine.DefaultSettings(), cfg.Game)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CARD_COLORS", "black, white, red")
	t.Setenv("MAX_CARD_NUMBER", "15")
	t.Setenv("INITIAL_DRAW_NUM", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []engine.CardColor{"black", "white", "red"}, cfg.Game.CardColors)
	assert.Equal(t, engine.CardNumber(15), cfg.Game.MaxCardNumber)
	assert.Equal(t, uint32(5), cfg.Game.InitialDrawNum)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)

	t.Setenv("LOG_LEVEL", "chatty")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("MAX_CARD_NUMBER", "lots")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnplayableRules(t *testing.T) {
	clearEnv(t)

	// Parses fine but breaks the game rules; must fail at startup, not
	// when the room fills.
	t.Setenv("MAX_CARD_NUMBER", "5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the minimum")

	t.Setenv("MAX_CARD_NUMBER", "11")
	t.Setenv("INITIAL_DRAW_NUM", "12")
	_, err = Load()
	assert.Error(t, err)
}
