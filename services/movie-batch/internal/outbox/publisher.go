// Package outbox relays rows written to movie_outbox by the store onto JetStream.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	StreamName     = "CATALOG_EVENTS"
	streamSubjects = "catalog.>"
)

type Publisher struct {
	Log          *zap.Logger
	DB           *pgxpool.Pool
	JS           nats.JetStreamContext
	BatchSize    int
	PollInterval time.Duration
}

type outboxRow struct {
	ID        string
	EventType string
	Payload   json.RawMessage
}

func NewPublisher(log *zap.Logger, db *pgxpool.Pool, nc *nats.Conn) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		Log:          log,
		DB:           db,
		JS:           js,
		BatchSize:    100,
		PollInterval: 2 * time.Second,
	}, nil
}

func streamConfig() nats.StreamConfig {
	return nats.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{streamSubjects},
		Storage:    nats.FileStorage,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 10 * time.Minute,
	}
}

// coversSubjects reports whether an existing stream already carries catalog.>.
func coversSubjects(cfg nats.StreamConfig) bool {
	return slices.Contains(cfg.Subjects, streamSubjects)
}

func (p *Publisher) EnsureStream() error {
	info, err := p.JS.StreamInfo(StreamName)
	if err == nil {
		if coversSubjects(info.Config) {
			return nil
		}
		cfg := info.Config
		cfg.Subjects = []string{streamSubjects}
		_, err := p.JS.UpdateStream(&cfg)
		return err
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	cfg := streamConfig()
	_, err = p.JS.AddStream(&cfg)
	return err
}

func (p *Publisher) Run(ctx context.Context) error {
	if err := p.EnsureStream(); err != nil {
		return err
	}

	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.flushOnce(ctx)
			if err != nil {
				p.Log.Warn("outbox flush failed", zap.Error(err))
				continue
			}
			if n > 0 {
				p.Log.Debug("outbox flushed", zap.Int("events", n))
			}
		}
	}
}

// flushOnce publishes one batch of unpublished rows and marks them. The row id doubles as
// the JetStream message id, so a batch re-sent after a failed commit is deduplicated.
func (p *Publisher) flushOnce(ctx context.Context) (int, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
SELECT id::text, event_type, payload
FROM movie_outbox
WHERE published_at IS NULL
ORDER BY created_at
LIMIT $1
FOR UPDATE SKIP LOCKED
`, p.BatchSize)
	if err != nil {
		return 0, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (outboxRow, error) {
		var item outboxRow
		err := row.Scan(&item.ID, &item.EventType, &item.Payload)
		return item, err
	})
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, err := p.JS.Publish(item.EventType, item.Payload, nats.MsgId(item.ID)); err != nil {
			return 0, err
		}
		ids = append(ids, item.ID)
	}

	if _, err := tx.Exec(ctx, `UPDATE movie_outbox SET published_at = now() WHERE id::text = ANY($1)`, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(items), nil
}
