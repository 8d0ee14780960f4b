package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gferrors "github.com/fulmenhq/gofulmen/errors"

	"github.com/catppuccin/api/internal/catalog"
	"github.com/catppuccin/api/internal/dataset"
	apperrors "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/gateway"
)

var defaultHTTPErrorResponder = func(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

var httpErrorResponder = defaultHTTPErrorResponder

// SetHTTPErrorResponder allows the server package to inject the centralized error handler.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		httpErrorResponder = defaultHTTPErrorResponder
		return
	}
	httpErrorResponder = responder
}

// ResetHTTPErrorResponder restores the default responder (useful for tests).
func ResetHTTPErrorResponder() {
	httpErrorResponder = defaultHTTPErrorResponder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}

// respondWithDatasetError maps gateway and catalog failures to envelopes.
func respondWithDatasetError(w http.ResponseWriter, r *http.Request, ds dataset.Dataset, err error) {
	respondWithError(w, r, datasetErrorEnvelope(r.Context(), ds, err))
}

func datasetErrorEnvelope(ctx context.Context, ds dataset.Dataset, err error) *gferrors.ErrorEnvelope {
	var (
		notFound  *catalog.NotFoundError
		fetchErr  *gateway.FetchError
		configErr *gateway.ConfigurationError
	)

	switch {
	case errors.As(err, &notFound):
		return apperrors.NewNotFoundError(notFound.Error())
	case errors.As(err, &fetchErr):
		return apperrors.WrapExternalService(ctx, err, fmt.Sprintf("Failed to fetch %s data", ds))
	case errors.Is(err, gateway.ErrNotReady):
		return apperrors.WrapServiceUnavailable(ctx, err, fmt.Sprintf("%s data is not loaded", ds))
	case errors.As(err, &configErr):
		return apperrors.WrapConfigInvalid(ctx, err, fmt.Sprintf("No data location configured for %s", ds))
	case errors.Is(err, catalog.ErrSectionMissing):
		return apperrors.WrapDataProcessing(ctx, err, fmt.Sprintf("Error processing %s", ds))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.WrapTimeout(ctx, err, fmt.Sprintf("Timed out loading %s data", ds))
	default:
		return apperrors.WrapInternal(ctx, err, fmt.Sprintf("Error processing %s", ds))
	}
}
