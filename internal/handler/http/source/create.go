package source

import (
	"encoding/json"
	"errors"
	"net/http"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/handler/http/respond"
	srcUC "balanced-news/internal/usecase/source"
)

type CreateHandler struct{ Svc *srcUC.Service }

// ServeHTTP registers a new feed source. A duplicate feed URL is a client
// error, not a server fault.
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		Category string `json:"category"`
		Region   string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	src, err := h.Svc.Create(r.Context(), srcUC.CreateInput{
		Name:     req.Name,
		FeedURL:  req.URL,
		Category: req.Category,
		Region:   req.Region,
	})
	if err != nil {
		if errors.Is(err, entity.ErrDuplicateSource) {
			respond.SafeErrorV2(w, http.StatusBadRequest,
				respond.NewAppError(http.StatusBadRequest, "Feed URL already exists", err))
			return
		}
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toDTO(src))
}
