package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/catppuccin/api/internal/dataset"
	"github.com/catppuccin/api/internal/metrics"
)

// DatasetReadiness reports whether a dataset holds a valid cache entry.
type DatasetReadiness interface {
	Ready(ds dataset.Dataset) bool
}

// DatasetsChecker fails while any of datasets is not cached.
func DatasetsChecker(cache DatasetReadiness, datasets []dataset.Dataset) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) error {
		var missing []string
		for _, ds := range datasets {
			ready := cache.Ready(ds)
			metrics.SetDatasetReady(ds.String(), ready)
			if !ready {
				missing = append(missing, ds.String())
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("datasets not loaded: %s", strings.Join(missing, ", "))
		}
		return nil
	})
}
