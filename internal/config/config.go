package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	DefaultMinPlayers        int
	JoinIPOnce               bool
	GameTTLHours             int
	CleanupSecret            string
	StrictSaboteurWin        bool
	RateLimitPerMinute       int
	RateLimitBurst           int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		DefaultMinPlayers:        3,
		GameTTLHours:             24,
		RateLimitPerMinute:       60,
		RateLimitBurst:           20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("DEFAULT_MIN_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultMinPlayers = value
		}
	}
	if raw := os.Getenv("JOIN_IP_ONCE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.JoinIPOnce = value
		}
	}
	if raw := os.Getenv("GAME_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GameTTLHours = value
		}
	}
	if raw := os.Getenv("CLEANUP_SECRET"); raw != "" {
		cfg.CleanupSecret = raw
	}
	if raw := os.Getenv("STRICT_SABOTEUR_WIN"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.StrictSaboteurWin = value
		}
	}
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		// Zero disables rate limiting entirely.
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RateLimitPerMinute = value
		}
	}
	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RateLimitBurst = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
