package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/catppuccin/api/internal/dataset"
	apperrors "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/metrics"
	"github.com/catppuccin/api/internal/observability"
)

// CacheAdmin is the part of *gateway.Gateway the admin route drives.
type CacheAdmin interface {
	InvalidateAll()
	Refresh(ctx context.Context, ds dataset.Dataset) error
}

// InvalidateResponse reports what the admin route did.
type InvalidateResponse struct {
	Action  string `json:"action"`
	Dataset string `json:"dataset,omitempty"`
}

// CacheInvalidateHandler drops every cached dataset, or with ?dataset=name
// refetches just that one. Requests must carry "Authorization: Bearer <token>".
func CacheInvalidateHandler(cache CacheAdmin, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !validBearer(r.Header.Get("Authorization"), token) {
			respondWithError(w, r, apperrors.NewUnauthorizedError("A valid bearer token is required"))
			return
		}

		name := r.URL.Query().Get("dataset")
		if name == "" {
			cache.InvalidateAll()
			metrics.RecordCacheInvalidation("admin")
			writeJSON(w, http.StatusOK, InvalidateResponse{Action: "invalidated"})
			return
		}

		ds, err := dataset.Parse(name)
		if err != nil {
			respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
			return
		}
		if err := cache.Refresh(r.Context(), ds); err != nil {
			respondWithDatasetError(w, r, ds, err)
			return
		}
		if observability.ServerLogger != nil {
			observability.ServerLogger.Info("Dataset refreshed via admin endpoint", zap.String("dataset", ds.String()))
		}
		writeJSON(w, http.StatusOK, InvalidateResponse{Action: "refreshed", Dataset: ds.String()})
	}
}

func validBearer(header, token string) bool {
	if token == "" {
		return false
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return false
	}
	presented := strings.TrimSpace(header[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
