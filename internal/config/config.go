// Package config loads server settings from the environment and optional
// lane rules from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/bowling/internal/bowling"
)

// maxFramesLimit bounds any frame count a client or rules file may ask for.
const maxFramesLimit = 30

// Config is the full server configuration.
type Config struct {
	Env            string        `env:"APP_ENV"          envDefault:"development"`
	Port           string        `env:"PORT"             envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL"        envDefault:"info"`
	DBPath         string        `env:"DB_PATH"          envDefault:"./data/bowling.db"`
	JWTSecret      string        `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string        `env:"COOKIE_NAME"      envDefault:"bowling_token"`
	ClientOrigins  []string      `env:"CLIENT_ORIGINS"   envDefault:"http://localhost:5173" envSeparator:","`
	SessionTTL     time.Duration `env:"SESSION_TTL"      envDefault:"2h"`
	RulesFile      string        `env:"LANE_RULES_FILE"`

	Rules Rules
}

// Rules are the lane settings applied to new games.
type Rules struct {
	Frames    int `yaml:"frames"`    // frames per game when the client does not ask
	MaxFrames int `yaml:"maxFrames"` // upper bound for client requested frame counts
}

// DefaultRules is a regulation game.
func DefaultRules() Rules {
	return Rules{Frames: bowling.DefaultFrames, MaxFrames: bowling.DefaultFrames}
}

// Load parses the environment and, when LANE_RULES_FILE is set, the rules file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Rules = DefaultRules()
	if cfg.RulesFile != "" {
		r, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Rules = r
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadRules reads lane rules from a YAML file. Missing keys keep their defaults.
func LoadRules(path string) (Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	r := DefaultRules()
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return Rules{}, fmt.Errorf("decode rules %s: %w", path, err)
	}
	if r.MaxFrames < r.Frames {
		r.MaxFrames = r.Frames
	}
	return r, nil
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if c.Rules.Frames < 1 || c.Rules.Frames > maxFramesLimit {
		errs = append(errs, fmt.Errorf("frames must be 1-%d, got %d", maxFramesLimit, c.Rules.Frames))
	}
	if c.Rules.MaxFrames > maxFramesLimit {
		errs = append(errs, fmt.Errorf("maxFrames must be at most %d, got %d", maxFramesLimit, c.Rules.MaxFrames))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	}
	if c.JWTExpiresDays < 1 {
		errs = append(errs, errors.New("JWT_EXPIRES_DAYS must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Production() && c.JWTSecret == "dev_secret_change_me" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Production reports whether cookies must be Secure.
func (c Config) Production() bool { return c.Env == "production" }

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
