package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by llm.provider and speech.provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	LLM        LLMConfig        `yaml:"llm"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Speech     SpeechConfig     `yaml:"speech"`
	AirQuality AirQualityConfig `yaml:"airQuality"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Trending   TrendingConfig   `yaml:"trending"`
	Activity   ActivityConfig   `yaml:"activity"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig selects and configures the oracle used for structured completions.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GeminiConfig contains Google GenAI settings, used by the gemini oracle and speech providers.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// SpeechConfig controls text-to-speech synthesis.
type SpeechConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	Voice    string        `yaml:"voice"`
	Archive  ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig points at S3-compatible storage for synthesized clips.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// AirQualityConfig tunes the capability prompts and input budgets.
type AirQualityConfig struct {
	SystemPrompt    string         `yaml:"systemPrompt"`
	MaxChatTokens   int            `yaml:"maxChatTokens"`
	DefaultLocation LocationConfig `yaml:"defaultLocation"`
}

// LocationConfig is the fallback used when the client cannot supply coordinates.
type LocationConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DashboardConfig controls session lifetime and access tokens.
type DashboardConfig struct {
	SessionTTL   time.Duration `yaml:"sessionTtl"`
	MaxSessions  int           `yaml:"maxSessions"`
	TokenSecret  string        `yaml:"tokenSecret"`
	VoiceEnabled bool          `yaml:"voiceEnabled"`
	MapZoom      int           `yaml:"mapZoom"`
}

// TrendingConfig controls the popular locations counter.
type TrendingConfig struct {
	Limit int         `yaml:"limit"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains connection information for the Valkey store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ActivityConfig controls the action activity log.
type ActivityConfig struct {
	ListLimit int            `yaml:"listLimit"`
	Postgres  PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("SPEECH_PROVIDER"); v != "" {
		cfg.Speech.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SPEECH_MODEL"); v != "" {
		cfg.Speech.Model = v
	}
	if v := os.Getenv("SPEECH_VOICE"); v != "" {
		cfg.Speech.Voice = v
	}
	if v := os.Getenv("SPEECH_ARCHIVE_ENABLED"); v != "" {
		cfg.Speech.Archive.Enabled = parseBool(v)
	}
	if v := os.Getenv("SPEECH_ARCHIVE_ENDPOINT"); v != "" {
		cfg.Speech.Archive.Endpoint = v
	}
	if v := os.Getenv("SPEECH_ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Speech.Archive.AccessKey = v
	}
	if v := os.Getenv("SPEECH_ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Speech.Archive.SecretKey = v
	}
	if v := os.Getenv("SPEECH_ARCHIVE_BUCKET"); v != "" {
		cfg.Speech.Archive.Bucket = v
	}
	if v := os.Getenv("SPEECH_ARCHIVE_REGION"); v != "" {
		cfg.Speech.Archive.Region = v
	}
	if v := os.Getenv("AIRQUALITY_MAX_CHAT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.AirQuality.MaxChatTokens = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.SessionTTL = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_MAX_SESSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.MaxSessions = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_TOKEN_SECRET"); v != "" {
		cfg.Dashboard.TokenSecret = v
	}
	if v := os.Getenv("DASHBOARD_VOICE_ENABLED"); v != "" {
		cfg.Dashboard.VoiceEnabled = parseBool(v)
	}
	if v := os.Getenv("TRENDING_REDIS_ENABLED"); v != "" {
		cfg.Trending.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("TRENDING_REDIS_ADDR"); v != "" {
		cfg.Trending.Redis.Addr = v
	}
	if v := os.Getenv("ACTIVITY_POSTGRES_DSN"); v != "" {
		cfg.Activity.Postgres.DSN = v
	}
	if v := os.Getenv("ACTIVITY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Activity.Postgres.MaxConns = int32(parsed)
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.4,
			Timeout:     60 * time.Second,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Speech: SpeechConfig{
			Provider: ProviderGemini,
			Model:    "gemini-2.5-flash-preview-tts",
			Voice:    "Algenib",
		},
		AirQuality: AirQualityConfig{
			SystemPrompt:  "You are an air quality expert with access to global air quality data similar to what CPCB and other international bodies publish. Be realistic with all figures.",
			MaxChatTokens: 512,
			DefaultLocation: LocationConfig{
				Name:      "New Delhi",
				Latitude:  28.6139,
				Longitude: 77.2090,
			},
		},
		Dashboard: DashboardConfig{
			SessionTTL:   30 * time.Minute,
			MaxSessions:  1000,
			VoiceEnabled: true,
			MapZoom:      10,
		},
		Trending: TrendingConfig{
			Limit: 10,
			Redis: RedisConfig{Prefix: "aqi"},
		},
		Activity: ActivityConfig{
			ListLimit: 50,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if !validProvider(c.LLM.Provider) {
		return fmt.Errorf("llm.provider must be %q or %q", ProviderOpenAI, ProviderGemini)
	}
	if !validProvider(c.Speech.Provider) {
		return fmt.Errorf("speech.provider must be %q or %q", ProviderOpenAI, ProviderGemini)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be within [0,2]")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if strings.TrimSpace(c.AirQuality.SystemPrompt) == "" {
		return errors.New("airQuality.systemPrompt cannot be empty")
	}
	if c.AirQuality.MaxChatTokens <= 0 {
		return errors.New("airQuality.maxChatTokens must be positive")
	}
	loc := c.AirQuality.DefaultLocation
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return errors.New("airQuality.defaultLocation is out of range")
	}
	if c.Dashboard.SessionTTL <= 0 {
		return errors.New("dashboard.sessionTtl must be positive")
	}
	if c.Dashboard.MaxSessions <= 0 {
		return errors.New("dashboard.maxSessions must be positive")
	}
	if c.Trending.Limit <= 0 {
		return errors.New("trending.limit must be positive")
	}
	if c.Trending.Redis.Enabled && strings.TrimSpace(c.Trending.Redis.Addr) == "" {
		return errors.New("trending.redis.addr cannot be empty when redis is enabled")
	}
	if c.Speech.Archive.Enabled && strings.TrimSpace(c.Speech.Archive.Bucket) == "" {
		return errors.New("speech.archive.bucket cannot be empty when the archive is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}

func validProvider(p string) bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
