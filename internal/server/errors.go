package server

import (
	"net/http"

	apperrors "github.com/catppuccin/api/internal/errors"
)

// HandleError is the single responder for handler and router errors.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}
