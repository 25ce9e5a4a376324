package preference

import (
	"encoding/json"
	"errors"
	"net/http"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/handler/http/auth"
	"balanced-news/internal/handler/http/respond"
	prefUC "balanced-news/internal/usecase/preference"
)

type GetHandler struct{ Svc *prefUC.Service }

// ServeHTTP returns the caller's stored preference policy, or the defaults
// when the caller never saved one.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFromContext(r.Context())

	policy, err := h.Svc.Get(r.Context(), userID)
	if err != nil {
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, fromPolicy(policy))
}

type PutHandler struct{ Svc *prefUC.Service }

// ServeHTTP replaces the caller's preference policy. Fields omitted from
// the request body keep their default values, so a partial document is a
// valid full replacement.
func (h PutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFromContext(r.Context())

	// デフォルト値を敷いた上にリクエストボディを重ねる
	req := fromPolicy(func() *entity.PreferencePolicy {
		def := entity.DefaultPreferencePolicy()
		return &def
	}())
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	policy := req.toPolicy()
	if err := h.Svc.Put(r.Context(), userID, &policy); err != nil {
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"message": "Preferences updated successfully",
	})
}
