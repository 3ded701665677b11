package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/ai/gemini"
	"github.com/spigell/job-matcher/internal/ai/openai"
	"github.com/spigell/job-matcher/internal/engine"
	"github.com/spigell/job-matcher/internal/fanout"
	"github.com/spigell/job-matcher/internal/filtering"
	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/providers"
	"github.com/spigell/job-matcher/internal/secrets"
	"github.com/spigell/job-matcher/internal/server"
)

const (
	aiNone = "none"

	geminiKeyEnv  = "GEMINI_API_KEY"
	openaiKeyEnv  = "OPENAI_API_KEY"
	adzunaKeyEnv  = "ADZUNA_RAPIDAPI_KEY"
	jsearchKeyEnv = "OPENWEBNINJA_API_KEY"

	maxIdleConnsPerHost = 8
)

// newEngine builds the matching engine and the description served by the
// health endpoint.
func newEngine(ctx context.Context, config *Config, log *zap.Logger) (*engine.Engine, server.Info, error) {
	reader, aiName, err := newDocumentReader(ctx, &config.AI, log)
	if err != nil {
		return nil, server.Info{}, err
	}

	adapters, err := newAdapters(config, log)
	if err != nil {
		return nil, server.Info{}, err
	}

	coordinator := fanout.New(adapters, config.Matching.Deadline, log)
	extractor := profile.NewExtractor(reader, log, config.AI.MaxLogLength, config.AI.Timeout)
	filters := filtering.Default(config.Exclude.Employers)

	sources := coordinator.Sources()
	names := make([]string, 0, len(sources))
	for _, source := range sources {
		names = append(names, string(source))
	}

	info := server.Info{
		Version:   version,
		AI:        aiName,
		Providers: names,
		Filters:   filtering.Describe(filters),
	}

	return engine.New(extractor, coordinator, filters, config.Matching.MaxResults, log), info, nil
}

// newDocumentReader returns nil when no AI backend is usable; requests then
// fall back to the query.
func newDocumentReader(ctx context.Context, config *AIConfig, log *zap.Logger) (ai.DocumentReader, string, error) {
	switch config.Provider {
	case gemini.ProviderName:
		key, err := secrets.Optional(secrets.Source{
			Name:  "gemini api key",
			Value: config.Gemini.APIKey,
			File:  config.Gemini.APIKeyFile,
			Env:   geminiKeyEnv,
		})
		if err != nil {
			return nil, "", err
		}
		if key == "" {
			log.Warn("gemini api key is not configured, resumes will not be read", zap.String("env", geminiKeyEnv))
			return nil, aiNone, nil
		}

		generator, err := gemini.NewGenerator(ctx, key, config.Gemini.Model, config.Gemini.MaxRetries, log)
		if err != nil {
			return nil, "", fmt.Errorf("create gemini client: %w", err)
		}
		return generator, gemini.ProviderName + "/" + generator.Model(), nil

	case openai.ProviderName:
		key, err := secrets.Optional(secrets.Source{
			Name:  "openai api key",
			Value: config.OpenAI.APIKey,
			File:  config.OpenAI.APIKeyFile,
			Env:   openaiKeyEnv,
		})
		if err != nil {
			return nil, "", err
		}
		if key == "" {
			log.Warn("openai api key is not configured, resumes will not be read", zap.String("env", openaiKeyEnv))
			return nil, aiNone, nil
		}

		reader, err := openai.NewReader(&openai.Config{
			APIKey:  key,
			BaseURL: config.OpenAI.BaseURL,
			Model:   config.OpenAI.Model,
			Logger:  log,
		})
		if err != nil {
			return nil, "", fmt.Errorf("create openai client: %w", err)
		}
		return reader, openai.ProviderName + "/" + reader.Model(), nil

	case aiNone, "":
		return nil, aiNone, nil
	}

	return nil, "", fmt.Errorf("unknown ai provider %q", config.Provider)
}

// newAdapters builds every enabled provider adapter. An adapter whose key is
// missing is still registered and reports missing credentials on each call.
func newAdapters(config *Config, log *zap.Logger) ([]providers.Adapter, error) {
	httpClient := newHTTPClient()
	salary := jobs.NewSalaryNormalizer(config.Salary.Currency, config.Salary.Rates)

	options := func(p ProviderConfig) providers.Options {
		return providers.Options{
			Timeout:    p.Timeout,
			MaxRetries: p.MaxRetries,
			Rate:       p.Rate,
			HTTPClient: httpClient,
			Salary:     salary,
			Logger:     log,
		}
	}

	var adapters []providers.Adapter

	if cfg := config.Providers.Adzuna; cfg.Enabled {
		key, err := providerKey("adzuna", cfg.APIKey, cfg.APIKeyFile, adzunaKeyEnv, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, providers.NewAdzuna(providers.AdzunaConfig{
			APIKey:         key,
			URL:            cfg.URL,
			Host:           cfg.Host,
			ResultsPerPage: cfg.ResultsPerPage,
			Currency:       cfg.Currency,
		}, options(cfg.ProviderConfig)))
	}

	if cfg := config.Providers.JSearch; cfg.Enabled {
		key, err := providerKey("jsearch", cfg.APIKey, cfg.APIKeyFile, jsearchKeyEnv, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, providers.NewJSearch(providers.JSearchConfig{
			APIKey:     key,
			URL:        cfg.URL,
			Country:    cfg.Country,
			DatePosted: cfg.DatePosted,
			Limit:      cfg.Limit,
		}, options(cfg.ProviderConfig)))
	}

	if cfg := config.Providers.ArbeitNow; cfg.Enabled {
		adapters = append(adapters, providers.NewArbeitNow(providers.ArbeitNowConfig{
			URL:   cfg.URL,
			Scan:  cfg.Scan,
			Limit: cfg.Limit,
		}, options(cfg.ProviderConfig)))
	}

	if cfg := config.Providers.HeadHunter; cfg.Enabled {
		adapters = append(adapters, providers.NewHeadHunter(providers.HeadHunterConfig{
			URL:       cfg.URL,
			UserAgent: cfg.UserAgent,
			PerPage:   cfg.PerPage,
			Areas:     cfg.Areas,
		}, options(cfg.ProviderConfig)))
	}

	if len(adapters) == 0 {
		log.Warn("no job providers are enabled, every match will be empty")
	}

	return adapters, nil
}

func providerKey(name, value, file, env string, log *zap.Logger) (string, error) {
	key, err := secrets.Optional(secrets.Source{
		Name:  name + " api key",
		Value: value,
		File:  file,
		Env:   env,
	})
	if err != nil {
		return "", err
	}
	if key == "" {
		log.Warn("provider api key is not configured", zap.String("provider", name), zap.String("env", env))
	}

	return key, nil
}

// newHTTPClient returns the client shared by all adapters. Per-call
// deadlines come from the request context.
func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = maxIdleConnsPerHost
	transport.IdleConnTimeout = 90 * time.Second

	return &http.Client{Transport: transport}
}

func serverConfig(config *ServerConfig) server.Config {
	return server.Config{
		Listen:       config.Listen,
		BodyLimit:    config.BodyLimit,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}
