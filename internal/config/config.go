// Package config loads game and runtime settings from YAML, .env, and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/engine"
	"github.com/talgya/capitol/internal/entropy"
	"github.com/talgya/capitol/internal/legislature"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "capitol.yaml"

// Config holds all application configuration.
type Config struct {
	Game        GameConfig         `yaml:"game"`
	Economy     economy.Params     `yaml:"economy"`
	Treasury    TreasuryConfig     `yaml:"treasury"`
	Legislature legislature.Config `yaml:"legislature"`
	Schedule    ScheduleConfig     `yaml:"schedule"`
	Database    DatabaseConfig     `yaml:"database"`
	Log         LogConfig          `yaml:"log"`
}

type GameConfig struct {
	Seed      int64           `yaml:"seed"` // 0 draws a fresh seed for each new game
	Start     string          `yaml:"start"` // YYYY-MM-DD
	Character CharacterConfig `yaml:"character"`
}

type CharacterConfig struct {
	Name          string  `yaml:"name"`
	Age           int     `yaml:"age"`
	Funds         float64 `yaml:"funds"`
	CampaignFunds float64 `yaml:"campaign_funds"`
	Approval      float64 `yaml:"approval"`
	Reputation    float64 `yaml:"reputation"`
}

type TreasuryConfig struct {
	// Openings maps a jurisdiction name to its opening balance as a decimal
	// string. Negative means the government starts in debt.
	Openings        map[string]string `yaml:"openings"`
	FiscalYearStart int               `yaml:"fiscal_year_start"` // Month, 1–12
}

// ScheduleConfig holds cron expressions evaluated on the simulated calendar.
type ScheduleConfig struct {
	Autosave string `yaml:"autosave"`
	Report   string `yaml:"report"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // auto, text, json
}

// Default returns the built-in configuration.
func Default() Config {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	game := engine.DefaultSettings(0, start)

	openings := make(map[string]string, len(game.Openings))
	for j, v := range game.Openings {
		openings[j.String()] = v.String()
	}

	return Config{
		Game: GameConfig{
			Seed:  game.Seed,
			Start: start.Format(time.DateOnly),
			Character: CharacterConfig{
				Name:          game.Character.Name,
				Age:           game.Character.Age,
				Funds:         game.Character.Funds,
				CampaignFunds: game.Character.CampaignFunds,
				Approval:      game.Character.Approval,
				Reputation:    game.Character.Reputation,
			},
		},
		Economy: game.Economy,
		Treasury: TreasuryConfig{
			Openings:        openings,
			FiscalYearStart: int(game.FiscalYearStart),
		},
		Legislature: game.Legislature,
		Schedule: ScheduleConfig{
			Autosave: "@monthly",
			Report:   "@weekly",
		},
		Database: DatabaseConfig{Path: "data/capitol.db"},
		Log:      LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads a YAML file at path on top of the defaults, loads .env if
// present, and applies CAPITOL_* environment overrides. A missing file is
// not an error. The result has not been validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setInt64(&cfg.Game.Seed, "CAPITOL_SEED")
	setStr(&cfg.Game.Start, "CAPITOL_START")
	setStr(&cfg.Game.Character.Name, "CAPITOL_CHARACTER_NAME")
	setInt(&cfg.Game.Character.Age, "CAPITOL_CHARACTER_AGE")

	setFloat64(&cfg.Economy.Volatility, "CAPITOL_ECONOMY_VOLATILITY")
	setFloat64(&cfg.Economy.CycleAmplitude, "CAPITOL_ECONOMY_CYCLE_AMPLITUDE")

	setBool(&cfg.Legislature.AutoAdvance, "CAPITOL_LEGISLATURE_AUTO_ADVANCE")

	setStr(&cfg.Schedule.Autosave, "CAPITOL_SCHEDULE_AUTOSAVE")
	setStr(&cfg.Schedule.Report, "CAPITOL_SCHEDULE_REPORT")

	setStr(&cfg.Database.Path, "CAPITOL_DB_PATH")

	setStr(&cfg.Log.Level, "CAPITOL_LOG_LEVEL")
	setStr(&cfg.Log.Format, "CAPITOL_LOG_FORMAT")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := c.StartDate(); err != nil {
		return err
	}
	ch := c.Game.Character
	if ch.Name == "" {
		return fmt.Errorf("game.character.name is required")
	}
	if ch.Age < 18 {
		return fmt.Errorf("game.character.age must be at least 18")
	}
	if ch.Approval < 0 || ch.Approval > 100 {
		return fmt.Errorf("game.character.approval must be within 0–100")
	}
	if ch.Reputation < 0 || ch.Reputation > 100 {
		return fmt.Errorf("game.character.reputation must be within 0–100")
	}
	if ch.Funds < 0 || ch.CampaignFunds < 0 {
		return fmt.Errorf("game.character funds must not be negative")
	}

	if c.Economy.Volatility < 0 {
		return fmt.Errorf("economy.volatility must not be negative")
	}
	if c.Economy.CyclePeriodDays <= 0 {
		return fmt.Errorf("economy.cycle_period_days must be positive")
	}

	if _, err := c.Openings(); err != nil {
		return err
	}
	if c.Treasury.FiscalYearStart < 1 || c.Treasury.FiscalYearStart > 12 {
		return fmt.Errorf("treasury.fiscal_year_start must be a month 1–12")
	}

	lc := c.Legislature
	if lc.ReferralDays < 0 || lc.CommitteeDays < 0 || lc.DebateDays < 0 || lc.VotingDays < 0 {
		return fmt.Errorf("legislature stage days must not be negative")
	}
	if lc.VoteNoise < 0 || lc.VoteNoise > 0.5 {
		return fmt.Errorf("legislature.vote_noise must be within 0–0.5")
	}

	if _, err := cron.ParseStandard(c.Schedule.Autosave); err != nil {
		return fmt.Errorf("schedule.autosave: %w", err)
	}
	if _, err := cron.ParseStandard(c.Schedule.Report); err != nil {
		return fmt.Errorf("schedule.report: %w", err)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json, got %q", c.Log.Format)
	}
	return nil
}

// StartDate parses the game start date.
func (c *Config) StartDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, c.Game.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("game.start: %w", err)
	}
	return t, nil
}

// Openings parses the treasury opening balances. Jurisdictions left out open
// at zero.
func (c *Config) Openings() (map[economy.Jurisdiction]decimal.Decimal, error) {
	out := make(map[economy.Jurisdiction]decimal.Decimal, len(c.Treasury.Openings))
	for name, raw := range c.Treasury.Openings {
		j, err := economy.ParseJurisdiction(name)
		if err != nil {
			return nil, fmt.Errorf("treasury.openings: %w", err)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("treasury.openings.%s: %w", name, err)
		}
		out[j] = v
	}
	return out, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Settings converts the game sections into new-game settings. An unset seed is
// drawn from the OS random source.
func (c *Config) Settings() (engine.Settings, error) {
	start, err := c.StartDate()
	if err != nil {
		return engine.Settings{}, err
	}
	openings, err := c.Openings()
	if err != nil {
		return engine.Settings{}, err
	}

	seed := c.Game.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	s := engine.DefaultSettings(seed, start)
	ch := c.Game.Character
	s.Character.Name = ch.Name
	s.Character.Age = ch.Age
	s.Character.Funds = ch.Funds
	s.Character.CampaignFunds = ch.CampaignFunds
	s.Character.Approval = ch.Approval
	s.Character.Reputation = ch.Reputation
	s.Economy = c.Economy
	s.Legislature = c.Legislature
	s.Openings = openings
	s.FiscalYearStart = time.Month(c.Treasury.FiscalYearStart)
	return s, nil
}
