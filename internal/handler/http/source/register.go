package source

import (
	"net/http"

	srcUC "balanced-news/internal/usecase/source"
)

// Limiter guards the trigger endpoints against rapid-fire abuse.
// Implemented by the sliding-window rate limiter in the parent package.
type Limiter interface {
	Limit(next http.Handler) http.Handler
}

// Register wires the feed registry routes into the mux. The manual trigger
// endpoints go through the rate limiter: a pass is expensive and
// fire-and-forget, so rapid requests must be shed before dispatch.
func Register(mux *http.ServeMux, svc *srcUC.Service, stats StatsProvider, trigger Trigger, limiter Limiter) {
	mux.Handle("GET    /api/feeds", ListHandler{Svc: svc})
	mux.Handle("POST   /api/feeds", CreateHandler{Svc: svc})
	mux.Handle("GET    /api/feeds/stats", StatsHandler{Svc: stats})
	mux.Handle("DELETE /api/feeds/", DeleteHandler{Svc: svc})
	mux.Handle("PATCH  /api/feeds/", ActiveHandler{Svc: svc})

	mux.Handle("POST /api/feeds/", limiter.Limit(ProcessHandler{Svc: svc, Trigger: trigger}))
	mux.Handle("POST /api/process-all-feeds", limiter.Limit(ProcessAllHandler{Trigger: trigger}))
}
