package article

import (
	"log/slog"
	"net/http"

	"balanced-news/internal/handler/http/auth"
	artUC "balanced-news/internal/usecase/article"
)

// Register wires the article routes into the mux. The collection endpoint
// accepts anonymous requests; a valid bearer token switches it to the
// preference-filtered view.
func Register(mux *http.ServeMux, svc *artUC.Service, verifier *auth.Verifier, logger *slog.Logger) {
	mux.Handle("GET /api/articles", verifier.Optional(ListHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/articles/", GetHandler{Svc: svc})
}
