package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/osse101/TokenArcade_Go/internal/client"
	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/haptic"
	"github.com/osse101/TokenArcade_Go/internal/logger"
)

// Config holds the application configuration
type Config struct {
	Environment string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`
	LogFormat   string `validate:"oneof=text json"`
	Version     string

	APIBaseURL  string        `validate:"required,url"`
	APIKey      string        // API key sent to the games API
	UserID      string        `validate:"max=64"`
	Locale      string        `validate:"required"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	MaxRetries  int           `validate:"gte=0,lte=10"`
	EventStream bool

	WheelDuration time.Duration `validate:"gt=0"`
	DiceDuration  time.Duration `validate:"gt=0"`
	CardDuration  time.Duration `validate:"gt=0"`

	HapticInitialDelay time.Duration `validate:"gte=0"`
	HapticInterval     time.Duration `validate:"gt=0"`
	HapticMaxPulses    int           `validate:"gte=0,lte=50"`
	HapticAccentLead   time.Duration `validate:"gte=0"`

	ViewCacheSize int           `validate:"gt=0"`
	ViewCacheTTL  time.Duration `validate:"gt=0"`

	MetricsAddr string

	DevServerPort    int `validate:"gt=0,lte=65535"`
	DevDailyLimit    int `validate:"gt=0"`
	DevInitialTokens int `validate:"gte=0"`
	DevTrialTokens   int `validate:"gt=0"`
	DevTokenCost     int `validate:"gt=0"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", logger.EnvironmentDev),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		Version:     getEnv("VERSION", logger.DefaultVersion),

		APIBaseURL:  getEnv("ARCADE_API_URL", DefaultAPIBaseURL),
		APIKey:      getEnv("API_KEY", ""),
		UserID:      getEnv("ARCADE_USER_ID", ""),
		Locale:      getEnv("ARCADE_LOCALE", DefaultLocale),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", client.DefaultTimeout),
		MaxRetries:  getEnvAsInt("HTTP_MAX_RETRIES", client.DefaultMaxRetries),
		EventStream: getEnvAsBool("ARCADE_EVENT_STREAM", true),

		WheelDuration: getEnvAsDuration("WHEEL_REVEAL_DURATION", DefaultWheelDuration),
		DiceDuration:  getEnvAsDuration("DICE_REVEAL_DURATION", DefaultDiceDuration),
		CardDuration:  getEnvAsDuration("CARD_REVEAL_DURATION", DefaultCardDuration),

		HapticInitialDelay: getEnvAsDuration("HAPTIC_INITIAL_DELAY", haptic.DefaultInitialDelay),
		HapticInterval:     getEnvAsDuration("HAPTIC_INTERVAL", haptic.DefaultInterval),
		HapticMaxPulses:    getEnvAsInt("HAPTIC_MAX_PULSES", haptic.DefaultMaxPulses),
		HapticAccentLead:   getEnvAsDuration("HAPTIC_ACCENT_LEAD", haptic.DefaultAccentLead),

		ViewCacheSize: getEnvAsInt("VIEW_CACHE_SIZE", DefaultViewCacheSize),
		ViewCacheTTL:  getEnvAsDuration("VIEW_CACHE_TTL", DefaultViewCacheTTL),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		DevDailyLimit:    getEnvAsInt("DEV_DAILY_LIMIT", DefaultDevDailyLimit),
		DevInitialTokens: getEnvAsInt("DEV_INITIAL_TOKENS", DefaultDevInitialTokens),
		DevTrialTokens:   getEnvAsInt("DEV_TRIAL_TOKENS", DefaultDevTrialTokens),
		DevTokenCost:     getEnvAsInt("DEV_TOKEN_COST", DefaultDevTokenCost),
	}

	portStr := getEnv("PORT", strconv.Itoa(DefaultDevServerPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.DevServerPort = port

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", e.Field(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
}

// Durations returns the reveal duration of every game
func (c *Config) Durations() map[domain.GameType]time.Duration {
	return map[domain.GameType]time.Duration{
		domain.GameWheel: c.WheelDuration,
		domain.GameDice:  c.DiceDuration,
		domain.GameCard:  c.CardDuration,
	}
}

// Haptics returns the pulse cadence
func (c *Config) Haptics() haptic.Config {
	h := haptic.DefaultConfig()
	h.InitialDelay = c.HapticInitialDelay
	h.Interval = c.HapticInterval
	h.MaxPulses = c.HapticMaxPulses
	h.AccentLead = c.HapticAccentLead
	return h
}

// Client returns the games API client configuration
func (c *Config) Client() client.Config {
	return client.Config{
		BaseURL:    c.APIBaseURL,
		APIKey:     c.APIKey,
		UserID:     c.UserID,
		Timeout:    c.HTTPTimeout,
		MaxRetries: c.MaxRetries,
	}
}

// Logger returns the logger configuration for service
func (c *Config) Logger(service string) logger.Config {
	return logger.NewConfig(c.LogLevel, c.LogFormat, service, c.Version, c.Environment, false)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvAsDuration accepts Go duration strings ("2500ms") or plain milliseconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
