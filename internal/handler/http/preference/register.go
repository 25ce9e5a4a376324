package preference

import (
	"net/http"

	"balanced-news/internal/handler/http/auth"
	prefUC "balanced-news/internal/usecase/preference"
)

// Register wires the preference routes into the mux. Both routes demand a
// verified bearer token.
func Register(mux *http.ServeMux, svc *prefUC.Service, verifier *auth.Verifier) {
	mux.Handle("GET /api/preferences", verifier.Require(GetHandler{Svc: svc}))
	mux.Handle("PUT /api/preferences", verifier.Require(PutHandler{Svc: svc}))
}
