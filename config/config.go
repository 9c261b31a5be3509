package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// It is composed of smaller structs that represent different concerns of the
// system: the HTTP server, the Postgres connection, the congruence repair
// pass, liquidity filtering, and ALM ledger construction.
//
// The struct is returned by Load() and passed explicitly into each component's
// constructor; no component reads process-wide environment state directly.
type Config struct {
	Server     ServerConfig     // HTTP server configuration
	Postgres   PostgresConfig   // PostgreSQL connection settings
	Congruence CongruenceConfig // Congruence enforcer settings
	Liquidity  LiquidityConfig  // Liquidity filter settings
	Ledger     LedgerConfig     // ALM ledger settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port      string // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimit int    // Requests allowed per client IP per minute
}

// PostgresConfig defines connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string // computed DSN used by database/sql to connect
}

// CongruenceConfig controls the congruence repair pass over the three
// per-contract time series (bars, Greeks, implied volatility).
//
// Fields:
//   - EODCutoff: clock time (HH:MM:SS, market timezone) of the spurious
//     end-of-day Greeks snapshot emitted by the upstream feed. Records at
//     exactly this time are removed unless a bar traded at that minute.
//   - Enforce0DTE: when true, bars whose timestamp date differs from the
//     contract's expiration date are treated as contamination and removed.
//     Disable for datasets that are not same-day-expiry.
//   - Timezone: IANA market timezone used to compare timestamp dates and
//     clock times (e.g., "America/New_York").
type CongruenceConfig struct {
	EODCutoff   string
	Enforce0DTE bool
	Timezone    string
}

// LiquidityConfig bounds which contracts enter downstream datasets.
//
// MinBars is the minimum bar count a contract needs to pass the activity
// threshold (default 60 one-minute bars, several hours of a session).
// The strike band around ATM is SigmaMultiplier expected moves wide, clamped
// to [MinStrikesPerSide, MaxStrikesPerSide] strikes of StrikeIncrement each;
// FallbackStrikesPerSide is used when no implied volatility is available.
type LiquidityConfig struct {
	MinBars                int
	SigmaMultiplier        float64
	StrikeIncrement        float64
	MinStrikesPerSide      int
	MaxStrikesPerSide      int
	FallbackStrikesPerSide int
}

// LedgerConfig holds ALM ledger construction settings.
//
// FXRate is the single fixed conversion rate applied to every cash and
// realized-P&L impact when the instrument currency differs from the account
// base currency; it is deliberately not a historical time series, so a built
// ledger is internally consistent. Timezone is the account's reporting
// timezone used to group ledger entries into calendar days.
type LedgerConfig struct {
	BaseCurrency string
	FXRate       float64
	Timezone     string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applies defaults, validates required fields, and returns the
// assembled Config.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
func Load() (Config, error) {
	v := viper.New()

	// Default values
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_RATE_LIMIT", 120)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "optpulse")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("CONGRUENCE_EOD_CUTOFF", "16:15:00")
	v.SetDefault("CONGRUENCE_ENFORCE_0DTE", true)
	v.SetDefault("CONGRUENCE_TIMEZONE", "America/New_York")

	v.SetDefault("LIQUIDITY_MIN_BARS", 60)
	v.SetDefault("LIQUIDITY_SIGMA_MULTIPLIER", 1.5)
	v.SetDefault("LIQUIDITY_STRIKE_INCREMENT", 1.0)
	v.SetDefault("LIQUIDITY_MIN_STRIKES_PER_SIDE", 5)
	v.SetDefault("LIQUIDITY_MAX_STRIKES_PER_SIDE", 25)
	v.SetDefault("LIQUIDITY_FALLBACK_STRIKES_PER_SIDE", 10)

	v.SetDefault("LEDGER_BASE_CURRENCY", "USD")
	v.SetDefault("LEDGER_FX_RATE", 1.0)
	v.SetDefault("LEDGER_TIMEZONE", "America/New_York")

	// Optionally read from .env if present (common in local dev)
	v.SetConfigFile(".env")
	_ = v.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	v.AutomaticEnv()

	cfg := Config{
		Server: ServerConfig{
			Port:      v.GetString("SERVER_PORT"),
			RateLimit: v.GetInt("SERVER_RATE_LIMIT"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		Congruence: CongruenceConfig{
			EODCutoff:   v.GetString("CONGRUENCE_EOD_CUTOFF"),
			Enforce0DTE: v.GetBool("CONGRUENCE_ENFORCE_0DTE"),
			Timezone:    v.GetString("CONGRUENCE_TIMEZONE"),
		},
		Liquidity: LiquidityConfig{
			MinBars:                v.GetInt("LIQUIDITY_MIN_BARS"),
			SigmaMultiplier:        v.GetFloat64("LIQUIDITY_SIGMA_MULTIPLIER"),
			StrikeIncrement:        v.GetFloat64("LIQUIDITY_STRIKE_INCREMENT"),
			MinStrikesPerSide:      v.GetInt("LIQUIDITY_MIN_STRIKES_PER_SIDE"),
			MaxStrikesPerSide:      v.GetInt("LIQUIDITY_MAX_STRIKES_PER_SIDE"),
			FallbackStrikesPerSide: v.GetInt("LIQUIDITY_FALLBACK_STRIKES_PER_SIDE"),
		},
		Ledger: LedgerConfig{
			BaseCurrency: v.GetString("LEDGER_BASE_CURRENCY"),
			FXRate:       v.GetFloat64("LEDGER_FX_RATE"),
			Timezone:     v.GetString("LEDGER_TIMEZONE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	cfg.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate ensures required variables are present and sane, so components do
// not fail later with obscure runtime errors.
func validate(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if cfg.Congruence.EODCutoff == "" {
		missing = append(missing, "CONGRUENCE_EOD_CUTOFF")
	}
	if cfg.Congruence.Timezone == "" {
		missing = append(missing, "CONGRUENCE_TIMEZONE")
	}
	if cfg.Ledger.Timezone == "" {
		missing = append(missing, "LEDGER_TIMEZONE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	if cfg.Liquidity.MinBars < 0 {
		return fmt.Errorf("LIQUIDITY_MIN_BARS must be >= 0, got %d", cfg.Liquidity.MinBars)
	}
	if cfg.Liquidity.MinStrikesPerSide > cfg.Liquidity.MaxStrikesPerSide {
		return fmt.Errorf("LIQUIDITY_MIN_STRIKES_PER_SIDE (%d) exceeds LIQUIDITY_MAX_STRIKES_PER_SIDE (%d)",
			cfg.Liquidity.MinStrikesPerSide, cfg.Liquidity.MaxStrikesPerSide)
	}
	if cfg.Ledger.FXRate <= 0 {
		return fmt.Errorf("LEDGER_FX_RATE must be > 0, got %v", cfg.Ledger.FXRate)
	}
	if cfg.Server.RateLimit <= 0 {
		return fmt.Errorf("SERVER_RATE_LIMIT must be > 0, got %d", cfg.Server.RateLimit)
	}
	return nil
}
