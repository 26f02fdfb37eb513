package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	defaultTemperature  = 0.7
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultOpenAIBase   = "https://api.openai.com/v1"
	defaultTimezone     = "Europe/Rome"
	defaultContactEmail = "info@casatorpe.it"
	defaultListenAddr   = ":8080"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds every deployment-time value. It is resolved once in main and
// handed to the components that need it; nothing reads the environment after
// start-up. Empty values are legal and disable the dependent feature only.
type Config struct {
	CalendarID     string
	CalendarAPIKey string

	ConciergeProvider        string
	ConciergeCalendarContext bool
	ConciergeTemperature     float32
	GeminiAPIKey             string
	GeminiModel              string
	OpenAIAPIKey             string
	OpenAIModel              string
	OpenAIBaseURL            string

	Timezone     string
	FormEndpoint string
	TelegramLink string
	WhatsAppLink string
	ContactEmail string

	PayPalClientID     string
	RevolutPaymentLink string
	BTCAddress         string
	ETHAddress         string
	USDTAddress        string

	ParamPrefix string
	LeadsTable  string
	ListenAddr  string
	LogLevel    string
}

// LoadDotEnv reads a local .env file into the process environment. A missing
// file is not an error; deployed environments never ship one.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load builds a Config from getenv (os.Getenv in production).
func Load(getenv func(string) string) Config {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		CalendarID:     env("GOOGLE_CALENDAR_ID", ""),
		CalendarAPIKey: env("GOOGLE_API_KEY", ""),

		ConciergeProvider:        strings.ToLower(env("CONCIERGE_PROVIDER", ProviderGemini)),
		ConciergeCalendarContext: envBool(getenv, "CONCIERGE_CALENDAR_CONTEXT", true),
		ConciergeTemperature:     envTemperature(getenv, "CONCIERGE_TEMPERATURE"),
		GeminiAPIKey:             env("API_KEY", env("GEMINI_API_KEY", "")),
		GeminiModel:              env("GEMINI_MODEL", defaultGeminiModel),
		OpenAIAPIKey:             env("OPENAI_API_KEY", ""),
		OpenAIModel:              env("OPENAI_MODEL", defaultOpenAIModel),
		OpenAIBaseURL:            env("OPENAI_BASE_URL", defaultOpenAIBase),

		Timezone:     env("TIMEZONE", defaultTimezone),
		FormEndpoint: env("FORMSPREE_ENDPOINT", ""),
		TelegramLink: env("TELEGRAM_LINK", ""),
		WhatsAppLink: env("WHATSAPP_LINK", ""),
		ContactEmail: env("CONTACT_EMAIL", defaultContactEmail),

		PayPalClientID:     env("PAYPAL_CLIENT_ID", ""),
		RevolutPaymentLink: env("REVOLUT_PAYMENT_LINK", ""),
		BTCAddress:         env("BTC_ADDRESS", ""),
		ETHAddress:         env("ETH_ADDRESS", ""),
		USDTAddress:        env("USDT_ADDRESS", ""),

		ParamPrefix: strings.TrimRight(env("PARAM_PREFIX", ""), "/"),
		LeadsTable:  env("LEADS_TABLE", ""),
		ListenAddr:  listenAddr(getenv),
		LogLevel:    strings.ToLower(env("LOG_LEVEL", "info")),
	}
	if cfg.ConciergeProvider != ProviderOpenAI {
		cfg.ConciergeProvider = ProviderGemini
	}
	return cfg
}

// CalendarConfigured reports whether the remote calendar can be queried.
func (c Config) CalendarConfigured() bool {
	return c.CalendarID != "" && c.CalendarAPIKey != ""
}

// Location returns the property time zone, falling back to Europe/Rome.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, using default", "timezone", c.Timezone, "err", err)
		loc, err = time.LoadLocation(defaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

// SlogLevel maps LOG_LEVEL onto a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func listenAddr(getenv func(string) string) string {
	if v := strings.TrimSpace(getenv("LISTEN_ADDR")); v != "" {
		return v
	}
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		return ":" + port
	}
	return defaultListenAddr
}

func envBool(getenv func(string) string, key string, def bool) bool {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envTemperature reads a sampling temperature in [0, 2]; anything else keeps
// the default.
func envTemperature(getenv func(string) string, key string) float32 {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return defaultTemperature
	}
	t, err := strconv.ParseFloat(v, 32)
	if err != nil || t < 0 || t > 2 {
		slog.Warn("invalid temperature, using default", "key", key, "value", v)
		return defaultTemperature
	}
	return float32(t)
}
