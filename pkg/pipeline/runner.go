package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eduplan/seatplan/pkg/cache"
	"github.com/eduplan/seatplan/pkg/credentials"
	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/observability"
	"github.com/eduplan/seatplan/pkg/render"
	"github.com/eduplan/seatplan/pkg/render/plan/layout"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
	"github.com/eduplan/seatplan/pkg/session"
)

// Runner executes exports with caching.
//
// The Runner holds no per-export state; several goroutines can use one
// Runner with different scopes and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Converter is the rsvg-convert binary used for PDF documents and
	// cards when Options leave it empty. Empty means PATH lookup.
	Converter string
}

// NewRunner creates a runner. A nil keyer means [cache.DefaultKeyer]; a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute validates p, lays it out and renders every requested format.
// Nothing is rendered when validation fails.
func (r *Runner) Execute(ctx context.Context, scope session.Scope, p seating.Plan, opts Options) (*Result, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	r.applyDefaults(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	if err := p.Validate(*opts.Policy); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, scope, p.Configuration, p.BoardPosition(), opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.CacheInfo.LayoutHit = layoutHit
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Seats = l.TotalSeats()
	result.Stats.Occupied = sink.Occupancy(l, p.Assignment, p.Roster()).Occupied

	r.Logger.Info("computed layout",
		"establishment", scope.EstablishmentID,
		"seats", result.Stats.Seats,
		"occupancy", result.Stats.Occupancy(),
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, planHash, renderHit, err := r.RenderWithCacheInfo(ctx, scope, p, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.PlanHash = planHash
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered plan",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo lays out cfg with caching and reports whether
// the layout came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, scope session.Scope, cfg seating.Configuration, board seating.BoardPosition, opts Options) (layout.Layout, bool, error) {
	r.applyDefaults(&opts)
	opts.SetDefaults()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, cfg.TotalSeats())
	start := time.Now()

	configHash, err := cache.HashJSON(cfg)
	if err != nil {
		return layout.Layout{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash configuration")
	}
	key := r.keyer(scope).LayoutKey(configHash, opts.LayoutKeyOpts(board))

	if data, hit := r.cacheGet(ctx, key, "layout"); hit {
		var cached layout.Layout
		if err := json.Unmarshal(data, &cached); err == nil {
			hooks.OnLayoutComplete(ctx, cached.TotalSeats(), time.Since(start), nil)
			return cached, true, nil
		}
		// Undecodable entries are recomputed.
	}

	l, err := ComputeLayout(cfg, board, opts)
	hooks.OnLayoutComplete(ctx, l.TotalSeats(), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		r.cacheSet(ctx, key, "layout", data, cache.TTLLayout)
	}
	return l, false, nil
}

// ComputeLayout is ComputeLayoutWithCacheInfo without the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, scope session.Scope, cfg seating.Configuration, board seating.BoardPosition, opts Options) (layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, scope, cfg, board, opts)
	return l, err
}

// RenderWithCacheInfo renders p with caching. It returns the artifacts,
// the plan hash and whether every artifact came from the cache. Cached
// artifacts are ignored when opts.Refresh is set.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, scope session.Scope, p seating.Plan, opts Options) (map[string][]byte, string, bool, error) {
	r.applyDefaults(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	// Sheets print the generation date to the minute; finer stamps would
	// only defeat the cache.
	p.Metadata.GeneratedAt = p.Metadata.GeneratedAt.Truncate(time.Minute)
	planHash, err := cache.HashJSON(p)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "hash plan")
	}
	keyer := r.keyer(scope)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit := r.cacheGet(ctx, keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format)), "artifact")
			if !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, planHash, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, p, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		r.cacheSet(ctx, keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format)), "artifact", data, cache.TTLArtifact)
	}
	return rendered, planHash, false, nil
}

// Archive issues credentials for req.Occupants and bundles one card per
// occupant into a ZIP archive. The archive is cached for
// [cache.TTLArchive] under the returned ID.
func (r *Runner) Archive(ctx context.Context, scope session.Scope, req ArchiveRequest) (*ArchiveResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if req.Format == "" {
		req.Format = sink.CardPDF
	}
	if req.Format != sink.CardSVG && req.Format != sink.CardPDF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported card format: %q", req.Format)
	}
	if len(req.Occupants) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no occupants to issue credentials for")
	}
	issuer := req.Issuer
	if issuer == nil {
		issuer = credentials.NewIssuer()
	}

	start := time.Now()
	creds, err := issuer.Issue(req.Occupants)
	if err != nil {
		observability.Pipeline().OnArchiveComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	data, err := sink.RenderCredentialArchive(ctx, creds, req.Metadata, req.Format, render.WithConverter(r.Converter))
	observability.Pipeline().OnArchiveComplete(ctx, len(creds), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	id, err := cache.HashJSON(struct {
		Credentials []credentials.Credential
		Metadata    seating.Metadata
	}{creds, req.Metadata})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash archive")
	}
	r.cacheSet(ctx, r.keyer(scope).ArchiveKey(id, string(req.Format)), "archive", data, cache.TTLArchive)

	r.Logger.Info("issued credentials",
		"establishment", scope.EstablishmentID,
		"entries", len(creds),
		"format", req.Format,
		"duration", time.Since(start))

	return &ArchiveResult{ID: id, Data: data, Format: req.Format, Credentials: creds}, nil
}

// FetchArchive returns a cached archive of scope's establishment.
func (r *Runner) FetchArchive(ctx context.Context, scope session.Scope, id string, format sink.CardFormat) ([]byte, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	data, hit := r.cacheGet(ctx, r.keyer(scope).ArchiveKey(id, string(format)), "archive")
	if !hit {
		return nil, errors.New(errors.ErrCodeNotFound, "archive %q not found or expired", id)
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) keyer(scope session.Scope) cache.Keyer {
	return cache.NewScopedKeyer(r.Keyer, scope.CachePrefix())
}

// cacheGet treats cache errors as misses.
func (r *Runner) cacheGet(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache get failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache set failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyDefaults sets the runner's logger and converter on options that
// leave them unset.
func (r *Runner) applyDefaults(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Converter == "" {
		opts.Converter = r.Converter
	}
}
