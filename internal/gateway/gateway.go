// Package gateway keeps a validated, in-memory copy of each upstream dataset.
//
// A dataset is fetched from its moving revision first and, when that fails for
// any reason, once more from its pinned fallback revision. A cached document is
// replaced only by a successful fetch; it never expires on its own.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/catppuccin/api/internal/dataset"
	"github.com/catppuccin/api/internal/fetch"
)

// Source names the revision a cached document came from.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// Config configures a Gateway.
type Config struct {
	Registry   *dataset.Registry
	Transport  fetch.Transport
	Transcoder fetch.Transcoder
	// BaseURL overrides the raw-content host. Defaults to dataset.DefaultBaseURL.
	BaseURL string
	// Validator enables schema validation of fetched documents when set.
	Validator *fetch.SchemaValidator
	// Clock stamps fetch times. Defaults to time.Now.
	Clock func() time.Time
	// Observer, when set, is called after every fetch attempt.
	Observer func(FetchEvent)
	Logger   *logging.Logger
}

// FetchEvent describes one upstream attempt.
type FetchEvent struct {
	Dataset  dataset.Dataset
	Source   Source
	URL      string
	Duration time.Duration
	Err      error
}

// EntryStatus is a read-only view of one cache entry.
type EntryStatus struct {
	Dataset   dataset.Dataset `json:"dataset"`
	Ready     bool            `json:"ready"`
	Source    Source          `json:"source,omitempty"`
	Revision  string          `json:"revision,omitempty"`
	URL       string          `json:"url,omitempty"`
	FetchedAt *time.Time      `json:"fetched_at,omitempty"`
	LastError string          `json:"last_error,omitempty"`
}

type entry struct {
	doc       any
	source    Source
	revision  string
	url       string
	fetchedAt time.Time
}

// Gateway is a fallback-aware fetch-and-cache layer over the dataset registry.
// It is safe for concurrent use.
type Gateway struct {
	registry   *dataset.Registry
	transport  fetch.Transport
	transcoder fetch.Transcoder
	baseURL    string
	validator  *fetch.SchemaValidator
	clock      func() time.Time
	observer   func(FetchEvent)
	logger     *logging.Logger

	flights singleflight.Group

	mu       sync.RWMutex
	entries  map[dataset.Dataset]*entry
	failures map[dataset.Dataset]error
}

// New builds a Gateway. A nil transport defaults to an HTTP transport and a
// nil transcoder to YAML.
func New(cfg Config) *Gateway {
	registry := cfg.Registry
	if registry == nil {
		registry = dataset.DefaultRegistry()
	}
	transport := cfg.Transport
	if transport == nil {
		transport = fetch.NewHTTPTransport(fetch.DefaultTimeout)
	}
	transcoder := cfg.Transcoder
	if transcoder == nil {
		transcoder = fetch.YAMLTranscoder{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = dataset.DefaultBaseURL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Gateway{
		registry:   registry,
		transport:  transport,
		transcoder: transcoder,
		baseURL:    baseURL,
		validator:  cfg.Validator,
		clock:      clock,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
		entries:    make(map[dataset.Dataset]*entry),
		failures:   make(map[dataset.Dataset]error),
	}
}

// Registry returns the registry the gateway resolves locations from.
func (g *Gateway) Registry() *dataset.Registry {
	return g.registry
}

// Ready reports whether ds has a valid cached document.
func (g *Gateway) Ready(ds dataset.Dataset) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.entries[ds]
	return ok
}

// EnsureFresh makes sure ds has a valid cached document, fetching it when
// needed. Concurrent callers for the same dataset share one fetch. Each caller
// stops waiting when its own context ends; the shared fetch keeps going and
// still populates the cache.
func (g *Gateway) EnsureFresh(ctx context.Context, ds dataset.Dataset) error {
	if g.Ready(ds) {
		return nil
	}
	return g.load(ctx, ds, false)
}

// Refresh refetches ds even when it is cached. The cached document is replaced
// only if the refetch succeeds.
func (g *Gateway) Refresh(ctx context.Context, ds dataset.Dataset) error {
	return g.load(ctx, ds, true)
}

// Get returns the cached document for ds. The value is shared and must be
// treated as read-only.
func (g *Gateway) Get(ds dataset.Dataset) (any, error) {
	g.mu.RLock()
	e, ok := g.entries[ds]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, ds)
	}
	return e.doc, nil
}

// InvalidateAll drops every cached document. The next EnsureFresh refetches.
func (g *Gateway) InvalidateAll() {
	g.mu.Lock()
	count := len(g.entries)
	g.entries = make(map[dataset.Dataset]*entry)
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Info("Dataset cache invalidated", zap.Int("entries", count))
	}
}

// Status reports every registered dataset's cache state.
func (g *Gateway) Status() []EntryStatus {
	datasets := g.registry.Datasets()
	out := make([]EntryStatus, 0, len(datasets))

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, ds := range datasets {
		status := EntryStatus{Dataset: ds}
		if e, ok := g.entries[ds]; ok {
			fetchedAt := e.fetchedAt
			status.Ready = true
			status.Source = e.source
			status.Revision = e.revision
			status.URL = e.url
			status.FetchedAt = &fetchedAt
		}
		if err := g.failures[ds]; err != nil {
			status.LastError = err.Error()
		}
		out = append(out, status)
	}
	return out
}

func (g *Gateway) load(ctx context.Context, ds dataset.Dataset, force bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loc, ok := g.registry.Lookup(ds)
	if !ok {
		return &ConfigurationError{Dataset: ds}
	}

	key := ds.String()
	if force {
		key = "refresh:" + key
	}

	// The shared fetch must outlive any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := g.flights.DoChan(key, func() (any, error) {
		if !force && g.Ready(ds) {
			return nil, nil
		}
		return nil, g.fetch(flightCtx, ds, loc)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gateway) fetch(ctx context.Context, ds dataset.Dataset, loc dataset.Location) error {
	doc, primaryErr := g.attempt(ctx, ds, loc, false)
	if primaryErr == nil {
		g.store(ds, loc, doc, false)
		return nil
	}

	if g.logger != nil {
		g.logger.Warn("Primary dataset fetch failed, trying pinned fallback",
			zap.String("dataset", ds.String()),
			zap.String("fallback_revision", loc.FallbackRevision),
			zap.Error(primaryErr))
	}

	doc, fallbackErr := g.attempt(ctx, ds, loc, true)
	if fallbackErr == nil {
		g.store(ds, loc, doc, true)
		return nil
	}

	err := &FetchError{Dataset: ds, Primary: primaryErr, Fallback: fallbackErr}

	g.mu.Lock()
	g.failures[ds] = err
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Error("Dataset unavailable from primary and fallback sources",
			zap.String("dataset", ds.String()),
			zap.Error(err))
	}
	return err
}

func (g *Gateway) attempt(ctx context.Context, ds dataset.Dataset, loc dataset.Location, fallback bool) (doc any, err error) {
	url := loc.URL(g.baseURL, fallback)
	revision := loc.Revision(fallback)
	source := SourcePrimary
	if fallback {
		source = SourceFallback
	}

	start := g.clock()
	defer func() {
		if g.observer != nil {
			g.observer(FetchEvent{
				Dataset:  ds,
				Source:   source,
				URL:      url,
				Duration: g.clock().Sub(start),
				Err:      err,
			})
		}
	}()

	body, err := g.transport.FetchBytes(ctx, url)
	if err != nil {
		return nil, &NetworkError{URL: url, Revision: revision, Err: err}
	}

	doc, err = fetch.Decode(body, g.transcoder)
	if err != nil {
		return nil, &ParseError{URL: url, Revision: revision, Err: err}
	}

	if g.validator != nil && loc.SchemaPath != "" {
		if err := g.validate(ctx, loc, fallback, doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (g *Gateway) validate(ctx context.Context, loc dataset.Location, fallback bool, doc any) error {
	schemaURL := loc.SchemaURL(g.baseURL, fallback)
	revision := loc.Revision(fallback)

	if !g.validator.Compiled(schemaURL) {
		schema, err := g.transport.FetchBytes(ctx, schemaURL)
		if err != nil {
			return &NetworkError{URL: schemaURL, Revision: revision, Err: err}
		}
		if err := g.validator.Compile(schemaURL, schema); err != nil {
			return &ParseError{URL: schemaURL, Revision: revision, Err: err}
		}
	}

	if err := g.validator.Validate(schemaURL, doc); err != nil {
		return &ParseError{URL: loc.URL(g.baseURL, fallback), Revision: revision, Err: err}
	}
	return nil
}

func (g *Gateway) store(ds dataset.Dataset, loc dataset.Location, doc any, fallback bool) {
	e := &entry{
		doc:       doc,
		source:    SourcePrimary,
		revision:  loc.Revision(fallback),
		url:       loc.URL(g.baseURL, fallback),
		fetchedAt: g.clock(),
	}
	if fallback {
		e.source = SourceFallback
	}

	g.mu.Lock()
	g.entries[ds] = e
	delete(g.failures, ds)
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Info("Dataset cached",
			zap.String("dataset", ds.String()),
			zap.String("source", string(e.source)),
			zap.String("revision", e.revision))
	}
}

// IsFetchFailure reports whether err came from a failed upstream fetch rather
// than from configuration or caller cancellation.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
