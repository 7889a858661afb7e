// Package config loads server configuration from the environment. Values
// come from real environment variables; cmd binaries load a .env file first
// so local development does not need exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Yamazak-mc/algo-cg/engine"
)

// Config is the fully resolved server configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds, e.g. ":8080".
	ListenAddr string

	// LogLevel is the logrus level name, e.g. "info" or "debug".
	LogLevel logrus.Level

	// Game holds the match rules.
	Game engine.Settings
}

// Load resolves the configuration from the environment, applying defaults
// for everything unset and failing fast on values that do not parse.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr: envOr("LISTEN_ADDR", ":8080"),
		LogLevel:   logrus.InfoLevel,
		Game:       engine.DefaultSettings(),
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if raw := os.Getenv("CARD_COLORS"); raw != "" {
		var colors []engine.CardColor
		for _, c := range strings.Split(raw, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				return Config{}, fmt.Errorf("config: CARD_COLORS: empty color in %q", raw)
			}
			colors = append(colors, engine.CardColor(c))
		}
		cfg.Game.CardColors = colors
	}

	if raw := os.Getenv("MAX_CARD_NUMBER"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return Config{}, fmt.Errorf("config: MAX_CARD_NUMBER: %w", err)
		}
		cfg.Game.MaxCardNumber = engine.CardNumber(n)
	}

	if raw := os.Getenv("INITIAL_DRAW_NUM"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("config: INITIAL_DRAW_NUM: %w", err)
		}
		cfg.Game.InitialDrawNum = uint32(n)
	}

	// Unplayable rules must fail here, not when the room fills.
	if err := cfg.Game.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
