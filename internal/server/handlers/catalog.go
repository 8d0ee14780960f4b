package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catppuccin/api/internal/catalog"
	"github.com/catppuccin/api/internal/dataset"
	apperrors "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/palette"
)

// DatasetSource serves cached dataset documents, loading them on demand.
type DatasetSource interface {
	EnsureFresh(ctx context.Context, ds dataset.Dataset) error
	Get(ds dataset.Dataset) (any, error)
}

// CatalogHandler serves the read-only catalog routes.
type CatalogHandler struct {
	source DatasetSource
}

// NewCatalogHandler creates a CatalogHandler over source.
func NewCatalogHandler(source DatasetSource) *CatalogHandler {
	return &CatalogHandler{source: source}
}

// Ports lists active and archived ports.
func (h *CatalogHandler) Ports(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r, dataset.Ports)
	if !ok {
		return
	}
	writePage(w, r, "ports", catalog.Ports(doc))
}

// Port returns one port by key.
func (h *CatalogHandler) Port(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, dataset.Ports, func(doc any, id string) (map[string]any, error) {
		return catalog.Port(doc, id)
	})
}

// Collaborators lists collaborators.
func (h *CatalogHandler) Collaborators(w http.ResponseWriter, r *http.Request) {
	h.section(w, r, dataset.Ports, "collaborators", catalog.Collaborators)
}

// Collaborator returns one collaborator by username.
func (h *CatalogHandler) Collaborator(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, dataset.Ports, catalog.Collaborator)
}

// Showcases lists showcased projects.
func (h *CatalogHandler) Showcases(w http.ResponseWriter, r *http.Request) {
	h.section(w, r, dataset.Ports, "showcases", catalog.Showcases)
}

// Categories lists port categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r, dataset.Categories)
	if !ok {
		return
	}
	writePage(w, r, "categories", catalog.Categories(doc))
}

// Category returns one category by key.
func (h *CatalogHandler) Category(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, dataset.Categories, catalog.Category)
}

// Userstyles lists userstyles ordered by key.
func (h *CatalogHandler) Userstyles(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r, dataset.Userstyles)
	if !ok {
		return
	}
	writePage(w, r, "userstyles", catalog.Userstyles(doc))
}

// Userstyle returns one userstyle by key.
func (h *CatalogHandler) Userstyle(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, dataset.Userstyles, catalog.Userstyle)
}

// Palette returns all four flavours.
func (h *CatalogHandler) Palette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, palette.All())
}

// Flavor returns a single flavour.
func (h *CatalogHandler) Flavor(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "flavor")
	flavor, ok := palette.Lookup(name)
	if !ok {
		respondWithError(w, r, apperrors.NewNotFoundError("Flavor not found: "+name))
		return
	}
	writeJSON(w, http.StatusOK, flavor)
}

func (h *CatalogHandler) document(w http.ResponseWriter, r *http.Request, ds dataset.Dataset) (any, bool) {
	if err := h.source.EnsureFresh(r.Context(), ds); err != nil {
		respondWithDatasetError(w, r, ds, err)
		return nil, false
	}
	doc, err := h.source.Get(ds)
	if err != nil {
		respondWithDatasetError(w, r, ds, err)
		return nil, false
	}
	return doc, true
}

func (h *CatalogHandler) section(w http.ResponseWriter, r *http.Request, ds dataset.Dataset, name string, list func(any) ([]any, error)) {
	doc, ok := h.document(w, r, ds)
	if !ok {
		return
	}
	items, err := list(doc)
	if err != nil {
		respondWithDatasetError(w, r, ds, err)
		return
	}
	writePage(w, r, name, items)
}

func (h *CatalogHandler) lookup(w http.ResponseWriter, r *http.Request, ds dataset.Dataset, find func(any, string) (map[string]any, error)) {
	doc, ok := h.document(w, r, ds)
	if !ok {
		return
	}
	item, err := find(doc, chi.URLParam(r, "identifier"))
	if err != nil {
		respondWithDatasetError(w, r, ds, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func writePage(w http.ResponseWriter, r *http.Request, name string, items []any) {
	query := r.URL.Query()
	page, perPage := catalog.ParsePage(query.Get("page"), query.Get("per_page"))
	p := catalog.NewPagination(len(items), page, perPage)

	writeJSON(w, http.StatusOK, map[string]any{
		name:         catalog.Paginate(items, p),
		"pagination": p,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
