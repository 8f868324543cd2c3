package main

import (
	"context"
	"errors"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/cinebox-platform/internal/platform/analytics"
	"github.com/example/cinebox-platform/internal/platform/auth"
	"github.com/example/cinebox-platform/internal/platform/config"
	"github.com/example/cinebox-platform/internal/platform/db"
	"github.com/example/cinebox-platform/internal/platform/httpserver"
	"github.com/example/cinebox-platform/internal/platform/logging"
	"github.com/example/cinebox-platform/internal/platform/natsconn"
	"github.com/example/cinebox-platform/internal/platform/run"
	batchcfg "github.com/example/cinebox-platform/services/movie-batch/internal/config"
	"github.com/example/cinebox-platform/services/movie-batch/internal/joblock"
	"github.com/example/cinebox-platform/services/movie-batch/internal/jobs"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kmdb"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kobis"
	"github.com/example/cinebox-platform/services/movie-batch/internal/outbox"
	"github.com/example/cinebox-platform/services/movie-batch/internal/pipeline"
	"github.com/example/cinebox-platform/services/movie-batch/internal/queue"
	"github.com/example/cinebox-platform/services/movie-batch/internal/ratelimit"
	"github.com/example/cinebox-platform/services/movie-batch/internal/schedule"
	"github.com/example/cinebox-platform/services/movie-batch/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.ForService(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	bc, err := batchcfg.Load()
	if err != nil {
		log.Error("load movie-batch config", zap.Error(err))
		run.Exit(1)
	}

	pool, err := db.Open(context.Background(), db.Options{DSN: bc.DatabaseURL})
	if err != nil {
		log.Error("postgres connect", zap.Error(err))
		run.Exit(1)
	}
	defer pool.Close()

	movies := store.NewPostgresMovieStore(pool)

	locker, err := joblock.NewLocker(bc.RedisDSN, pool, cfg.IsProd())
	if err != nil {
		log.Error("job lock init", zap.Error(err))
		run.Exit(1)
	}

	kmdbLimiter := ratelimit.PerSecond(bc.KmdbRPS)
	defer kmdbLimiter.Stop()

	orch := &jobs.Orchestrator{
		Log: log,
		Refresher: pipeline.Refresher{
			Log:         log,
			Listing:     kobis.New(bc.KobisBaseURL, bc.KobisAPIKey),
			Detail:      kmdb.New(bc.KmdbBaseURL, bc.KmdbAPIKey),
			Store:       movies,
			Limiter:     kmdbLimiter,
			PageSize:    bc.ItemPerPage,
			Concurrency: bc.EnrichConcurrency,
		},
		Advancer: pipeline.Advancer{Log: log, Store: movies},
		Locker:   locker,
		LockTTL:  bc.LockTTL,
		Location: bc.Location,
	}
	runJob := func(ctx context.Context, job string) error {
		_, err := orch.Run(ctx, job)
		return err
	}

	sched, err := schedule.New(log, bc.Location, bc.Table(), jobs.Names(), runJob)
	if err != nil {
		log.Error("schedule init", zap.Error(err))
		run.Exit(1)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		Logger: log,
		ReadyFunc: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		},
	})

	// Manual runs for operators. NATS (batch.jobs.run) is the preferred trigger.
	if bc.EnableHTTPTriggers {
		trigger := jobs.Trigger{Log: log, Jobs: orch}
		switch {
		case bc.AdminJWTSecret != "":
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireOperator(auth.JWTVerifier{Secret: []byte(bc.AdminJWTSecret)}))
				trigger.Register(r)
			})
		case cfg.IsProd():
			log.Error("ENABLE_HTTP_TRIGGERS requires ADMIN_JWT_SECRET in production")
			run.Exit(1)
		default:
			log.Warn("http job triggers enabled without auth (development only)")
			trigger.Register(r)
		}
	}

	var (
		pub *outbox.Publisher
		wrk *queue.Worker
	)
	if natsconn.Enabled(bc.NATSURL) {
		nc, err := natsconn.Connect(natsconn.Options{URL: bc.NATSURL, Name: cfg.ServiceName})
		if err != nil {
			log.Error("nats connect", zap.Error(err))
			run.Exit(1)
		}
		defer nc.Close()

		if pub, err = outbox.NewPublisher(log, pool, nc); err != nil {
			log.Error("outbox publisher init", zap.Error(err))
			run.Exit(1)
		}
		if wrk, err = queue.NewWorker(log, nc, runJob); err != nil {
			log.Error("worker init", zap.Error(err))
			run.Exit(1)
		}

		js, err := nc.JetStream()
		if err != nil {
			log.Error("jetstream", zap.Error(err))
			run.Exit(1)
		}
		events := analytics.New(js, log, cfg.ServiceName)
		if err := events.EnsureStream(); err != nil {
			log.Warn("analytics stream unavailable, run events may be dropped", zap.Error(err))
		}
		orch.Events = events
	} else {
		log.Warn("NATS_URL not set, outbox relay and job queue disabled")
	}

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if pub != nil {
			go func() {
				if err := pub.Run(ctx); err != nil {
					log.Error("outbox publisher stopped", zap.Error(err))
				}
			}()
		}
		if wrk != nil {
			go func() {
				if err := wrk.Consume(ctx); err != nil {
					log.Error("worker stopped", zap.Error(err))
				}
			}()
		}

		sched.Start()
		for job, at := range sched.NextRuns(time.Now().In(bc.Location)) {
			log.Info("next scheduled run", zap.String("job", job), zap.Time("at", at))
		}
		return srv.Start(log)
	})
	runner.Graceful(func(ctx context.Context) error {
		return errors.Join(srv.Shutdown(ctx), sched.Stop(ctx))
	})

	log.Info("exit", zap.Int("code", code))
	pool.Close()
	_ = log.Sync()
	run.Exit(code)
}
