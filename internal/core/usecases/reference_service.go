package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/ports"
	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
)

const (
	referenceCacheKey = "vertiwatch:reference"
	referenceCacheTTL = 24 * 60 * 60
)

// Reference sources.
const (
	SourceBackend = "backend"
	SourceCache   = "cache"
	SourceEmpty   = "empty"
)

// Reference is the data loaded once at startup: the team palette and the
// vertiport list. It is read-only after construction.
type Reference struct {
	Teams      []domain.Team
	Palette    *domain.Palette
	Vertiports []domain.Vertiport
	LoadedAt   time.Time
	Source     string
}

func (r *Reference) palette() *domain.Palette {
	if r == nil {
		return nil
	}
	return r.Palette
}

type cachedReference struct {
	Teams      []domain.Team      `json:"teams"`
	Vertiports []domain.Vertiport `json:"vertiports"`
}

// ReferenceService loads teams and vertiports and owns the resulting palette.
type ReferenceService struct {
	api    ports.FleetAPI
	cache  ports.CacheService
	colors []domain.RGB
	ref    atomic.Pointer[Reference]
}

// NewReferenceService creates a new ReferenceService. cache may be nil.
func NewReferenceService(api ports.FleetAPI, cache ports.CacheService, colors []domain.RGB) *ReferenceService {
	s := &ReferenceService{api: api, cache: cache, colors: colors}
	s.ref.Store(&Reference{Palette: domain.NewPalette(nil, colors), Source: SourceEmpty})
	return s
}

// Load fetches teams and vertiports concurrently. On success the result is
// cached; on failure the cached copy is used instead. An error is returned
// only when neither source produced data, in which case the reference stays
// empty.
func (s *ReferenceService) Load(ctx context.Context) (*Reference, error) {
	var teams []domain.Team
	var ports []domain.Vertiport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.api.Teams(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ports, err = s.api.Vertiports(gctx)
		return err
	})
	fetchErr := g.Wait()

	if fetchErr == nil {
		ref := s.build(teams, ports, SourceBackend)
		s.store(ctx, teams, ports)
		return ref, nil
	}

	slog.Warn("reference data fetch failed, trying cache", "error", fetchErr)
	if cached, ok := s.loadCached(ctx); ok {
		return s.build(cached.Teams, cached.Vertiports, SourceCache), nil
	}
	return s.Current(), fmt.Errorf("load reference data: %w", fetchErr)
}

// Current returns the most recently loaded reference data.
func (s *ReferenceService) Current() *Reference {
	return s.ref.Load()
}

func (s *ReferenceService) build(teams []domain.Team, ports []domain.Vertiport, source string) *Reference {
	ref := &Reference{
		Teams:      teams,
		Palette:    domain.NewPalette(teams, s.colors),
		Vertiports: ports,
		LoadedAt:   time.Now(),
		Source:     source,
	}
	s.ref.Store(ref)
	slog.Info("reference data loaded",
		"source", source, "teams", len(teams), "vertiports", len(ports))
	return ref
}

func (s *ReferenceService) store(ctx context.Context, teams []domain.Team, ports []domain.Vertiport) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(cachedReference{Teams: teams, Vertiports: ports})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, referenceCacheKey, data, referenceCacheTTL); err != nil {
		slog.Warn("cache reference data", "error", err)
	}
}

func (s *ReferenceService) loadCached(ctx context.Context) (cachedReference, bool) {
	var out cachedReference
	if s.cache == nil {
		return out, false
	}
	data, err := s.cache.Get(ctx, referenceCacheKey)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("reference").Inc()
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		metrics.CacheMisses.WithLabelValues("reference").Inc()
		return out, false
	}
	metrics.CacheHits.WithLabelValues("reference").Inc()
	return out, true
}
