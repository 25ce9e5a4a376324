package source

import (
	"errors"
	"net/http"

	"balanced-news/internal/handler/http/pathutil"
	"balanced-news/internal/handler/http/respond"
	srcUC "balanced-news/internal/usecase/source"
)

type DeleteHandler struct{ Svc *srcUC.Service }

// ServeHTTP removes a feed source. Articles already ingested from the feed
// are kept.
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/api/feeds/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, srcUC.ErrSourceNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
