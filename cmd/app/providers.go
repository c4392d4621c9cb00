package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"
	"google.golang.org/genai"

	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
	"github.com/yanqian/breatheeasy/internal/domain/oracle"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
	"github.com/yanqian/breatheeasy/internal/infra/activity"
	"github.com/yanqian/breatheeasy/internal/infra/config"
	"github.com/yanqian/breatheeasy/internal/infra/llm/chatgpt"
	"github.com/yanqian/breatheeasy/internal/infra/llm/gemini"
	"github.com/yanqian/breatheeasy/internal/infra/llm/tokenizer"
	"github.com/yanqian/breatheeasy/internal/infra/speechstore"
	"github.com/yanqian/breatheeasy/internal/infra/trending"
	httpiface "github.com/yanqian/breatheeasy/internal/interface/http"
)

const activityMemoryCapacity = 500

// llmClients holds the provider SDK clients that the configuration actually asks for.
type llmClients struct {
	chatgpt *chatgpt.Client
	genai   *genai.Client
}

func provideLLMClients(cfg *config.Config) (llmClients, error) {
	var clients llmClients
	uses := func(provider string) bool {
		return cfg.LLM.Provider == provider || cfg.Speech.Provider == provider
	}
	if uses(config.ProviderOpenAI) {
		client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err != nil {
			return clients, err
		}
		clients.chatgpt = client
	}
	if uses(config.ProviderGemini) {
		client, err := gemini.NewClient(context.Background(), cfg.Gemini.APIKey)
		if err != nil {
			return clients, err
		}
		clients.genai = client
	}
	return clients, nil
}

func provideOracle(cfg *config.Config, clients llmClients) oracle.Oracle {
	if cfg.LLM.Provider == config.ProviderGemini {
		return gemini.NewOracle(clients.genai, cfg.Gemini.Model)
	}
	return chatgpt.NewOracle(clients.chatgpt, cfg.LLM.Model)
}

func provideSynthesizer(cfg *config.Config, clients llmClients) speech.Synthesizer {
	if cfg.Speech.Provider == config.ProviderOpenAI {
		return chatgpt.NewSpeaker(clients.chatgpt, cfg.Speech.Model, cfg.Speech.Voice)
	}
	return gemini.NewSpeaker(clients.genai, cfg.Speech.Model, cfg.Speech.Voice)
}

func provideSpeechArchive(cfg *config.Config, logger *slog.Logger) speech.Archive {
	archiveCfg := cfg.Speech.Archive
	if !archiveCfg.Enabled {
		return nil
	}
	archive, err := speechstore.NewR2Archive(archiveCfg.Endpoint, archiveCfg.AccessKey, archiveCfg.SecretKey, archiveCfg.Bucket, archiveCfg.Region, logger)
	if err != nil {
		logger.Error("speech archive unavailable, clips will not be kept", "error", err)
		return nil
	}
	logger.Info("speech archive enabled", "bucket", archiveCfg.Bucket)
	return archive
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) airquality.TokenCounter {
	return tokenizer.New(cfg.LLM.Model, logger)
}

func provideAirQualityConfig(cfg *config.Config) airquality.Config {
	return airquality.Config{
		SystemPrompt:  cfg.AirQuality.SystemPrompt,
		Temperature:   cfg.LLM.Temperature,
		MaxChatTokens: cfg.AirQuality.MaxChatTokens,
	}
}

func provideActionConfig(cfg *config.Config) action.Config {
	return action.Config{
		TrendingLimit: cfg.Trending.Limit,
		ActivityLimit: cfg.Activity.ListLimit,
	}
}

func provideActivityLog(cfg *config.Config, logger *slog.Logger) (action.ActivityLog, func()) {
	fallback := activity.NewMemoryStore(activityMemoryCapacity)
	dsn := strings.TrimSpace(cfg.Activity.Postgres.DSN)
	if dsn == "" {
		logger.Info("activity postgres dsn not set, using memory store")
		return fallback, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory store", "error", err)
		return fallback, func() {}
	}
	if cfg.Activity.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Activity.Postgres.MaxConns
	}
	if cfg.Activity.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Activity.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory store", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory store", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	store := activity.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("activity schema setup failed, using memory store", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	logger.Info("activity postgres store enabled")
	return store, pool.Close
}

func provideTrending(cfg *config.Config, logger *slog.Logger) (action.Trending, func()) {
	if !cfg.Trending.Redis.Enabled {
		return trending.NewMemoryStore(), func() {}
	}
	opt, err := buildValkeyOptions(cfg.Trending.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return trending.NewMemoryStore(), func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return trending.NewMemoryStore(), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return trending.NewMemoryStore(), func() {}
	}
	logger.Info("trending valkey store enabled", "addr", cfg.Trending.Redis.Addr)
	return trending.NewValkeyStore(client, cfg.Trending.Redis.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		opt, err := valkey.ParseURL(addr)
		if err != nil {
			return valkey.ClientOption{}, fmt.Errorf("parse valkey url: %w", err)
		}
		return opt, nil
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideRegistryConfig(cfg *config.Config) dashboard.RegistryConfig {
	return dashboard.RegistryConfig{
		TTL:         cfg.Dashboard.SessionTTL,
		MaxSessions: cfg.Dashboard.MaxSessions,
	}
}

func provideSessionConfig(cfg *config.Config) dashboard.Config {
	loc := cfg.AirQuality.DefaultLocation
	return dashboard.Config{
		VoiceEnabled: cfg.Dashboard.VoiceEnabled,
		MapZoom:      cfg.Dashboard.MapZoom,
		DefaultLocation: dashboard.Location{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		},
	}
}

func provideTokenIssuer(cfg *config.Config, logger *slog.Logger) (*httpiface.TokenIssuer, error) {
	if cfg.Dashboard.TokenSecret == "" {
		logger.Warn("dashboard token secret not set, using a random one; sessions will not survive restarts")
	}
	return httpiface.NewTokenIssuer(cfg.Dashboard.TokenSecret, 0)
}
