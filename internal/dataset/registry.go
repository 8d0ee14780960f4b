package dataset

import (
	"sort"
	"strings"
)

const (
	// DefaultBaseURL serves raw repository files by repository, revision and path.
	DefaultBaseURL = "https://raw.githubusercontent.com"

	// MainRevision is the moving revision tried before the pinned fallback.
	MainRevision = "main"
)

// Location describes where a dataset document and its schema live upstream.
type Location struct {
	Repository       string `json:"repository"`
	Path             string `json:"path"`
	SchemaPath       string `json:"schema_path"`
	FallbackRevision string `json:"fallback_revision"`
}

// Revision returns the revision used for a primary or fallback fetch.
func (l Location) Revision(fallback bool) string {
	if fallback {
		return l.FallbackRevision
	}
	return MainRevision
}

// URL builds the document URL for the primary or fallback revision.
func (l Location) URL(baseURL string, fallback bool) string {
	return buildURL(baseURL, l.Repository, l.Revision(fallback), l.Path)
}

// SchemaURL builds the schema URL pinned to the same revision as the document.
func (l Location) SchemaURL(baseURL string, fallback bool) string {
	if l.SchemaPath == "" {
		return ""
	}
	return buildURL(baseURL, l.Repository, l.Revision(fallback), l.SchemaPath)
}

func buildURL(baseURL, repository, revision, path string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + strings.Trim(repository, "/") + "/" + revision + "/" + strings.TrimLeft(path, "/")
}

// Registry maps each dataset to its fixed upstream location.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	locations map[Dataset]Location
}

var defaultLocations = map[Dataset]Location{
	Ports: {
		Repository:       "catppuccin/catppuccin",
		Path:             "resources/ports.porcelain.json",
		SchemaPath:       "resources/ports.porcelain.schema.json",
		FallbackRevision: "a1ce9a7c29c6aa323f43caa88f21bf51faa91c3a",
	},
	Userstyles: {
		Repository:       "catppuccin/userstyles",
		Path:             "scripts/userstyles.yml",
		SchemaPath:       "scripts/userstyles.schema.json",
		FallbackRevision: "4ee2fffe0492ec2be6d744f770a1cdaa98226d44",
	},
	Categories: {
		Repository:       "catppuccin/catppuccin",
		Path:             "resources/categories.yml",
		SchemaPath:       "resources/categories.schema.json",
		FallbackRevision: "a1ce9a7c29c6aa323f43caa88f21bf51faa91c3a",
	},
}

// DefaultRegistry returns the registry of the published Catppuccin datasets.
func DefaultRegistry() *Registry {
	return NewRegistry(defaultLocations)
}

// NewRegistry copies the supplied locations into a new registry.
func NewRegistry(locations map[Dataset]Location) *Registry {
	copied := make(map[Dataset]Location, len(locations))
	for ds, loc := range locations {
		copied[ds] = loc
	}
	return &Registry{locations: copied}
}

// Lookup returns the location registered for ds.
func (r *Registry) Lookup(ds Dataset) (Location, bool) {
	if r == nil {
		return Location{}, false
	}
	loc, ok := r.locations[ds]
	return loc, ok
}

// Datasets lists the registered datasets in declaration order.
func (r *Registry) Datasets() []Dataset {
	if r == nil {
		return nil
	}
	out := make([]Dataset, 0, len(r.locations))
	for ds := range r.locations {
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
