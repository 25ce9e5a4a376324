package source

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"balanced-news/internal/handler/http/pathutil"
	"balanced-news/internal/handler/http/respond"
	srcUC "balanced-news/internal/usecase/source"
)

// Trigger dispatches ingestion passes without blocking the caller.
// Implemented by the scheduler.
type Trigger interface {
	TriggerSource(ctx context.Context, id int64)
	TriggerAll(ctx context.Context)
}

type ProcessHandler struct {
	Svc     *srcUC.Service
	Trigger Trigger
}

// ServeHTTP starts a single-feed ingestion pass. The feed must exist; the
// pass itself runs in the background and its outcome is observable only
// through logs and metrics.
func (h ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/process") {
		http.NotFound(w, r)
		return
	}
	id, err := pathutil.ExtractIDWithSuffix(r.URL.Path, "/api/feeds/", "/process")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	// 存在しないフィードの起動要求は 404 で弾いてからディスパッチする
	if _, err := h.Svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, srcUC.ErrSourceNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	h.Trigger.TriggerSource(r.Context(), id)

	respond.JSON(w, http.StatusAccepted, map[string]string{
		"message": "Feed processing started",
	})
}

type ProcessAllHandler struct {
	Trigger Trigger
}

// ServeHTTP starts a full ingestion pass over every active feed. If a pass
// is already in flight the trigger is suppressed internally; the response
// is 202 either way.
func (h ProcessAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Trigger.TriggerAll(r.Context())

	respond.JSON(w, http.StatusAccepted, map[string]string{
		"message": "Processing all feeds started",
	})
}
