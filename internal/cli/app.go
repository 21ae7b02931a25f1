package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/crules/internal/cache"
	"github.com/ppiankov/crules/internal/logging"
	"github.com/ppiankov/crules/internal/model"
	"github.com/ppiankov/crules/internal/rules"
	"github.com/ppiankov/crules/internal/source"
	"github.com/ppiankov/crules/internal/worker"
)

// setDefaults registers every configuration key with viper so that
// environment variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)
	v.SetDefault("http.respect_robots", d.HTTP.RespectRobots)
	v.SetDefault("http.http_proxy", d.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", d.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", d.HTTP.NoProxy)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.width", d.Output.Width)
	v.SetDefault("output.verbose", d.Output.Verbose)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.strict_citations", d.LLM.StrictCitations)
}

// loadConfig resolves the effective configuration from viper and the
// global flags.
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Log.Level = "debug"
	}
	if cfg.Cache.Dir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(dir, "crules")
		}
	}

	return cfg, nil
}

// app bundles what a command needs to load documents
type app struct {
	cfg     *model.Config
	logger  *slog.Logger
	cache   cache.Cache
	fetcher *source.Fetcher
	limiter *worker.Limiter
	loader  *worker.Loader
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	var c cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	} else if cfg.Cache.Enabled {
		c = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
	}

	fetcher := source.NewFetcher(cfg.HTTP, logger)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	loader := worker.NewLoader(fetcher, c, limiter, cfg.Concurrency.Workers, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		cache:   c,
		fetcher: fetcher,
		limiter: limiter,
		loader:  loader,
	}, nil
}

// loadDocument loads a single location into a one-document corpus
func (a *app) loadDocument(ctx context.Context, location string) (*rules.Corpus, string, error) {
	result := a.loader.LoadOne(ctx, location)
	if result.Err != nil {
		return nil, "", result.Err
	}

	corpus := &rules.Corpus{}
	corpus.Add(result.Name, *result.Edition)
	return corpus, result.Name, nil
}

// locationArg returns args[i], or "-" for standard input when absent
func locationArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "-"
}
