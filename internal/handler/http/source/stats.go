package source

import (
	"context"
	"net/http"

	"balanced-news/internal/handler/http/respond"
	artUC "balanced-news/internal/usecase/article"
)

// StatsProvider aggregates registry and article totals.
// Implemented by the article use case.
type StatsProvider interface {
	Stats(ctx context.Context) (*artUC.StatsOutput, error)
}

type StatsHandler struct{ Svc StatsProvider }

// statsDTO is the JSON shape of the aggregate counters.
type statsDTO struct {
	TotalFeeds        int64            `json:"total_feeds"`
	ActiveFeeds       int64            `json:"active_feeds"`
	TotalArticles     int64            `json:"total_articles"`
	PaywalledArticles int64            `json:"paywalled_articles"`
	Categories        map[string]int64 `json:"categories"`
	Regions           map[string]int64 `json:"regions"`
}

func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, statsDTO{
		TotalFeeds:        stats.TotalFeeds,
		ActiveFeeds:       stats.ActiveFeeds,
		TotalArticles:     stats.TotalArticles,
		PaywalledArticles: stats.PaywalledArticles,
		Categories:        stats.Categories,
		Regions:           stats.Regions,
	})
}
