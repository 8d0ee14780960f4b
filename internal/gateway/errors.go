package gateway

import (
	"errors"
	"fmt"

	"github.com/catppuccin/api/internal/dataset"
)

// ErrNotReady is returned by Get when a dataset has no valid cached document.
// Callers must run EnsureFresh first; hitting this is a programming error.
var ErrNotReady = errors.New("dataset not ready")

// ConfigurationError reports a dataset without a registered location.
type ConfigurationError struct {
	Dataset dataset.Dataset
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no data location configured for dataset %s", e.Dataset)
}

// NetworkError reports a transport failure for one fetch attempt.
type NetworkError struct {
	URL      string
	Revision string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s (revision %s): %v", e.URL, e.Revision, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a document that could not be decoded or validated.
type ParseError struct {
	URL      string
	Revision string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s (revision %s): %v", e.URL, e.Revision, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError aggregates the primary and fallback failures for a dataset.
type FetchError struct {
	Dataset  dataset.Dataset
	Primary  error
	Fallback error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s from both primary and fallback sources: primary: %v; fallback: %v",
		e.Dataset, e.Primary, e.Fallback)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}
