package article

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"balanced-news/internal/handler/http/auth"
	"balanced-news/internal/handler/http/respond"
	"balanced-news/internal/observability/logging"
	artUC "balanced-news/internal/usecase/article"
)

type ListHandler struct {
	Svc    *artUC.Service
	Logger *slog.Logger
}

// ServeHTTP serves the recent-first article page. When the request carries a
// verified bearer token the page is filtered by the caller's stored
// preference policy; anonymous requests get the unfiltered page.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	limit, err := parseIntQuery(r, "limit", artUC.DefaultLimit)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	skip, err := parseIntQuery(r, "skip", 0)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	policy := auth.PolicyFromContext(ctx)

	articles, err := h.Svc.List(ctx, artUC.ListInput{
		Limit:  limit,
		Skip:   skip,
		Policy: policy,
	})
	if err != nil {
		logger.Error("failed to list articles",
			slog.Int("limit", limit),
			slog.Int("skip", skip),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toDTO(a))
	}

	logger.Info("article list served",
		slog.Int("limit", limit),
		slog.Int("skip", skip),
		slog.Int("returned", len(out)),
		slog.Bool("filtered", policy != nil))

	respond.JSON(w, http.StatusOK, out)
}

func parseIntQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}
	return v, nil
}
