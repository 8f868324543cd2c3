package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/cinebox-platform/services/movie-batch/internal/jobs"
)

const (
	StreamName     = "BATCH_JOBS"
	streamSubjects = "batch.jobs.>"
	RunSubject     = "batch.jobs.run"
	DLQSubject     = "batch.jobs.dlq"
	durableName    = "movie_batch_jobs"
)

// RunJobMessage asks the batch service to run one job.
type RunJobMessage struct {
	Job string `json:"job"`
}

// RunFunc runs a job by name.
type RunFunc func(ctx context.Context, job string) error

type Worker struct {
	Log  *zap.Logger
	NATS *nats.Conn
	JS   nats.JetStreamContext
	Run  RunFunc

	MaxDeliver int
}

func NewWorker(log *zap.Logger, nc *nats.Conn, run RunFunc) (*Worker, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Worker{Log: log, NATS: nc, JS: js, Run: run, MaxDeliver: 5}, nil
}

func (w *Worker) EnsureStream() error {
	info, err := w.JS.StreamInfo(StreamName)
	if err == nil {
		for _, s := range info.Config.Subjects {
			if s == streamSubjects {
				return nil
			}
		}
		cfg := info.Config
		cfg.Subjects = []string{streamSubjects}
		_, err := w.JS.UpdateStream(&cfg)
		return err
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = w.JS.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{streamSubjects},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

// Consume pulls run requests until ctx ends. Jobs are handled one at a time.
func (w *Worker) Consume(ctx context.Context) error {
	if err := w.EnsureStream(); err != nil {
		return err
	}
	sub, err := w.JS.PullSubscribe(RunSubject, durableName)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	w.Log.Info("consumer started", zap.String("subject", RunSubject))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(1, nats.MaxWait(2*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, m := range msgs {
			_ = w.handleMsg(ctx, m)
		}
	}
}

func (w *Worker) handleMsg(ctx context.Context, m *nats.Msg) error {
	md, _ := m.Metadata()
	numDelivered := uint64(1)
	if md != nil {
		numDelivered = md.NumDelivered
	}

	if w.MaxDeliver > 0 && int(numDelivered) > w.MaxDeliver {
		_ = w.publishDLQ(m.Data, fmt.Sprintf("max deliveries exceeded: %d", numDelivered))
		_ = m.Ack()
		return nil
	}

	job, err := decodeRunJob(m.Data)
	if err != nil {
		w.Log.Warn("bad payload", zap.String("subject", m.Subject), zap.Error(err))
		_ = m.Ack()
		return nil
	}

	switch ack := w.dispatch(ctx, job, numDelivered); ack {
	case ackDone:
		_ = m.Ack()
	case ackRetry:
		_ = m.NakWithDelay(backoffDelay(numDelivered))
	case ackDead:
		_ = w.publishDLQ(m.Data, "unknown job")
		_ = m.Ack()
	}
	return nil
}

type ackAction int

const (
	ackDone ackAction = iota
	ackRetry
	ackDead
)

// dispatch runs job and decides what happens to the message. Busy and failed runs are
// retried with backoff; unknown jobs go straight to the DLQ.
func (w *Worker) dispatch(ctx context.Context, job string, attempt uint64) ackAction {
	err := w.Run(ctx, job)
	switch {
	case err == nil:
		return ackDone
	case errors.Is(err, jobs.ErrUnknownJob):
		w.Log.Warn("unknown job requested", zap.String("job", job))
		return ackDead
	case errors.Is(err, jobs.ErrJobBusy):
		w.Log.Info("job busy, will retry", zap.String("job", job), zap.Uint64("attempt", attempt))
		return ackRetry
	default:
		w.Log.Warn("job failed", zap.String("job", job), zap.Uint64("attempt", attempt), zap.Error(err))
		return ackRetry
	}
}

func decodeRunJob(data []byte) (string, error) {
	var msg RunJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", err
	}
	job := strings.TrimSpace(msg.Job)
	if job == "" {
		return "", errors.New("job is required")
	}
	return job, nil
}

func (w *Worker) publishDLQ(data []byte, reason string) error {
	msg := map[string]any{"subject": RunSubject, "reason": reason, "payload": json.RawMessage(data)}
	b, _ := json.Marshal(msg)
	_, err := w.JS.Publish(DLQSubject, b)
	return err
}
