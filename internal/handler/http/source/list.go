package source

import (
	"net/http"

	"balanced-news/internal/handler/http/respond"
	srcUC "balanced-news/internal/usecase/source"
)

type ListHandler struct{ Svc *srcUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, e := range list {
		out = append(out, toDTO(e))
	}
	respond.JSON(w, http.StatusOK, out)
}
