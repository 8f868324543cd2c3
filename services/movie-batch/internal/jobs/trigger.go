package jobs

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/cinebox-platform/internal/platform/api"
	"github.com/example/cinebox-platform/internal/platform/httpserver"
	"github.com/example/cinebox-platform/services/movie-batch/internal/kobis"
)

// Runner runs a job by name.
type Runner interface {
	Run(ctx context.Context, job string) (Result, error)
}

// Trigger exposes manual job runs over HTTP for operators.
type Trigger struct {
	Log  *zap.Logger
	Jobs Runner
}

func (t Trigger) Register(r chi.Router) {
	r.Post("/v1/jobs/{job}", func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		job := strings.TrimSpace(chi.URLParam(r, "job"))

		res, err := t.Jobs.Run(r.Context(), job)
		switch {
		case err == nil:
			api.WriteJSON(w, http.StatusOK, res)
		case errors.Is(err, ErrUnknownJob):
			api.NotFound(w, "JOB_UNKNOWN", "Unknown job "+job, rid)
		case errors.Is(err, ErrJobBusy):
			api.Conflict(w, "JOB_BUSY", "Another catalog job is running", rid, map[string]any{"job": job})
		case errors.Is(err, kobis.ErrSourceUnavailable):
			api.WriteError(w, http.StatusBadGateway, "SOURCE_UNAVAILABLE", err.Error(), rid, nil)
		default:
			if t.Log != nil {
				t.Log.Error("manual job run failed", zap.String("job", job), zap.String("request_id", rid), zap.Error(err))
			}
			api.Internal(w, rid)
		}
	})
}
