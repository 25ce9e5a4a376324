package source

import (
	"encoding/json"
	"errors"
	"net/http"

	"balanced-news/internal/handler/http/pathutil"
	"balanced-news/internal/handler/http/respond"
	srcUC "balanced-news/internal/usecase/source"
)

type ActiveHandler struct{ Svc *srcUC.Service }

// ServeHTTP toggles whether a feed participates in scheduled passes.
// Deactivated feeds keep their articles and can be re-activated later.
func (h ActiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/feeds/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("active field required"))
		return
	}

	if err := h.Svc.SetActive(r.Context(), id, *req.Active); err != nil {
		if errors.Is(err, srcUC.ErrSourceNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
