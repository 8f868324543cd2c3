package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/cinebox-platform/services/movie-batch/internal/jobs"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kmdb"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kobis"
	"github.com/example/cinebox-platform/services/movie-batch/internal/schedule"
)

type ScheduleConfig struct {
	DailyRefresh        string
	LifecycleAdvance    string
	YearBoundaryRefresh string
}

type Config struct {
	KobisBaseURL string
	KobisAPIKey  string
	KmdbBaseURL  string
	KmdbAPIKey   string

	ItemPerPage       int
	KmdbRPS           int
	EnrichConcurrency int

	Location *time.Location
	Schedule ScheduleConfig

	DatabaseURL string
	NATSURL     string
	RedisDSN    string
	LockTTL     time.Duration

	EnableHTTPTriggers bool
	AdminJWTSecret     string
}

func Load() (Config, error) {
	cfg := Config{
		KobisBaseURL: envOr("KOBIS_API_URL", kobis.DefaultBaseURL),
		KobisAPIKey:  env("KOBIS_API_KEY"),
		KmdbBaseURL:  envOr("KMDB_API_URL", kmdb.DefaultBaseURL),
		KmdbAPIKey:   env("KMDB_API_KEY"),
		Schedule: ScheduleConfig{
			DailyRefresh:        envOr("SCHEDULE_DAILY_REFRESH", schedule.DefaultDailyRefreshSpec),
			LifecycleAdvance:    envOr("SCHEDULE_LIFECYCLE_ADVANCE", schedule.DefaultLifecycleAdvanceSpec),
			YearBoundaryRefresh: envOr("SCHEDULE_YEAR_BOUNDARY_REFRESH", schedule.DefaultYearBoundaryRefreshSpec),
		},
		DatabaseURL:        env("DATABASE_URL"),
		NATSURL:            env("NATS_URL"),
		RedisDSN:           env("REDIS_DSN"),
		EnableHTTPTriggers: env("ENABLE_HTTP_TRIGGERS") == "true",
		AdminJWTSecret:     env("ADMIN_JWT_SECRET"),
	}
	if cfg.KobisAPIKey == "" {
		return Config{}, errors.New("KOBIS_API_KEY is required")
	}
	if cfg.KmdbAPIKey == "" {
		return Config{}, errors.New("KMDB_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	var err error
	if cfg.ItemPerPage, err = intEnv("ITEM_PER_PAGE", kobis.DefaultPageSize); err != nil {
		return Config{}, err
	}
	if cfg.ItemPerPage < 1 || cfg.ItemPerPage > kobis.MaxPageSize {
		return Config{}, fmt.Errorf("ITEM_PER_PAGE must be between 1 and %d", kobis.MaxPageSize)
	}
	if cfg.KmdbRPS, err = intEnv("KMDB_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.EnrichConcurrency, err = intEnv("ENRICH_CONCURRENCY", 1); err != nil {
		return Config{}, err
	}
	if cfg.EnrichConcurrency < 1 {
		return Config{}, errors.New("ENRICH_CONCURRENCY must be at least 1")
	}

	tz := envOr("BATCH_TIMEZONE", "Asia/Seoul")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("BATCH_TIMEZONE %q: %w", tz, err)
	}

	ttl := envOr("LOCK_TTL", "2h")
	if cfg.LockTTL, err = time.ParseDuration(ttl); err != nil || cfg.LockTTL <= 0 {
		return Config{}, fmt.Errorf("LOCK_TTL %q is not a positive duration", ttl)
	}
	return cfg, nil
}

// Table builds the schedule from the configured cron specs.
func (c Config) Table() schedule.Table {
	return schedule.Table{
		{Job: jobs.DailyCatalogRefreshJob, Spec: c.Schedule.DailyRefresh},
		{Job: jobs.LifecycleAdvanceJob, Spec: c.Schedule.LifecycleAdvance},
		{Job: jobs.YearBoundaryRefreshJob, Spec: c.Schedule.YearBoundaryRefresh},
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, def string) string {
	if v := env(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := env(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, v)
	}
	return n, nil
}
