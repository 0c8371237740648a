package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"framecheck/internal/models"
	"framecheck/internal/util"
)

// DefaultBaselineFPS is used when a game carries no baseline for the
// requested resolution and quality
const DefaultBaselineFPS = 60

// EstimationObserver is told about every successful estimation
type EstimationObserver interface {
	ObserveEstimation(record models.EstimationRecord)
}

// EstimationService resolves fps estimates: cache first, then the provider
// when one is configured, degrading to the local tier estimator on soft
// provider failures. It is safe for concurrent use.
type EstimationService struct {
	cache     FPSCache
	provider  EstimationProvider
	coalesce  bool
	group     singleflight.Group
	telemetry *Telemetry
	observers []EstimationObserver

	mu             sync.Mutex
	counts         map[models.Source]uint64
	providerErrors atomic.Uint64
}

// EstimationOption configures an EstimationService
type EstimationOption func(*EstimationService)

// WithProvider sets the remote estimator. Without one every miss is
// answered locally and tagged as estimated.
func WithProvider(p EstimationProvider) EstimationOption {
	return func(s *EstimationService) {
		s.provider = p
	}
}

// WithCoalescing shares one provider call among concurrent requests for
// the same cache key
func WithCoalescing(enabled bool) EstimationOption {
	return func(s *EstimationService) {
		s.coalesce = enabled
	}
}

// WithTelemetry records outcomes to Prometheus
func WithTelemetry(t *Telemetry) EstimationOption {
	return func(s *EstimationService) {
		s.telemetry = t
	}
}

// WithObservers registers observers of successful estimations
func WithObservers(observers ...EstimationObserver) EstimationOption {
	return func(s *EstimationService) {
		s.observers = append(s.observers, observers...)
	}
}

// NewEstimationService creates a service around cache
func NewEstimationService(cache FPSCache, opts ...EstimationOption) *EstimationService {
	s := &EstimationService{
		cache:  cache,
		counts: make(map[models.Source]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderConfigured reports whether a remote estimator is in use
func (s *EstimationService) ProviderConfigured() bool {
	return s.provider != nil
}

// ResolveBaseline returns the game's baseline for the resolution and
// quality (ultra reads the high tier), or DefaultBaselineFPS when absent
func ResolveBaseline(game models.GameFpsProfile, resolution, quality string) int {
	if base, ok := game.Baseline(resolution, quality); ok && base > 0 {
		return base
	}
	return DefaultBaselineFPS
}

func validateRequest(req models.EstimationRequest) error {
	switch {
	case strings.TrimSpace(req.Game.Name) == "":
		return &ValidationError{Field: "game name"}
	case strings.TrimSpace(req.Resolution) == "":
		return &ValidationError{Field: "resolution"}
	case strings.TrimSpace(req.Quality) == "":
		return &ValidationError{Field: "quality"}
	}
	return nil
}

// Estimate runs one estimation. A *ValidationError means the request was
// incomplete and nothing was looked up; a hard *ProviderError is returned
// as is and never cached. Every other outcome is written to the cache.
func (s *EstimationService) Estimate(ctx context.Context, req models.EstimationRequest) (models.Estimation, error) {
	if err := validateRequest(req); err != nil {
		return models.Estimation{}, err
	}

	base := ResolveBaseline(req.Game, req.Resolution, req.Quality)
	key := CacheKey(req.System, req.Game.Name, req.Resolution, req.Quality)

	if entry, ok := s.cache.Get(key); ok {
		return s.finish(ctx, req, models.Estimation{FPS: entry.FPS, Source: models.SourceCache, BaseFPS: base}), nil
	}

	if s.provider == nil {
		fps := EstimateLocal(req.System, base)
		s.cache.Set(key, fps)
		return s.finish(ctx, req, models.Estimation{FPS: fps, Source: models.SourceLocal, BaseFPS: base}), nil
	}

	var est models.Estimation
	var err error
	if s.coalesce {
		var v any
		var shared bool
		v, err, shared = s.group.Do(key, func() (any, error) {
			// A flight that finished after our lookup has already filled the key.
			// The miss was counted above, so this check must not count again.
			if entry, ok := s.recheck(key); ok {
				return models.Estimation{FPS: entry.FPS, Source: models.SourceCache, BaseFPS: base}, nil
			}
			return s.estimateRemote(ctx, req, base, key)
		})
		if err == nil {
			est = v.(models.Estimation)
		}
		if shared {
			log.Printf("[ESTIMATE] [request_id=%s] Shared in-flight provider call for %q", util.RequestID(ctx), req.Game.Name)
		}
	} else {
		est, err = s.estimateRemote(ctx, req, base, key)
	}
	if err != nil {
		return models.Estimation{}, err
	}
	return s.finish(ctx, req, est), nil
}

// cachePeeker is implemented by caches that can look up a key without
// recording it in their hit and miss counters
type cachePeeker interface {
	Peek(key string) (CacheEntry, bool)
}

func (s *EstimationService) recheck(key string) (CacheEntry, bool) {
	if p, ok := s.cache.(cachePeeker); ok {
		return p.Peek(key)
	}
	return s.cache.Get(key)
}

// estimateRemote asks the provider and degrades to the local estimator on
// soft failures. The provider call is detached from the caller's
// cancellation and bounded by the provider's own timeout.
func (s *EstimationService) estimateRemote(ctx context.Context, req models.EstimationRequest, base int, key string) (models.Estimation, error) {
	fps, err := s.provider.EstimateFPS(context.WithoutCancel(ctx), ProviderQuery{
		Hardware:   req.System,
		Game:       req.Game.Name,
		Resolution: req.Resolution,
		Quality:    req.Quality,
		BaseFPS:    base,
	})

	switch {
	case err == nil:
		s.cache.Set(key, fps)
		return models.Estimation{FPS: fps, Source: models.SourceProvider, BaseFPS: base}, nil
	case IsSoftFallback(err):
		local := EstimateLocal(req.System, base)
		log.Printf("[ESTIMATE] [request_id=%s] Provider failed softly (%v), local estimate %d fps", util.RequestID(ctx), err, local)
		// Overwrites any earlier provider-backed entry for this key.
		s.cache.Set(key, local)
		return models.Estimation{FPS: local, Source: models.SourceFallback, BaseFPS: base}, nil
	default:
		s.providerErrors.Add(1)
		log.Printf("[ESTIMATE] [request_id=%s] Provider error: %v", util.RequestID(ctx), err)
		return models.Estimation{}, err
	}
}

func (s *EstimationService) finish(ctx context.Context, req models.EstimationRequest, est models.Estimation) models.Estimation {
	s.mu.Lock()
	s.counts[est.Source]++
	s.mu.Unlock()
	s.telemetry.estimation(est.Source)

	record := models.EstimationRecord{
		Timestamp:  time.Now(),
		RequestID:  util.RequestID(ctx),
		Game:       req.Game.Name,
		Resolution: req.Resolution,
		Quality:    req.Quality,
		GPU:        req.System.GPU,
		FPS:        est.FPS,
		BaseFPS:    est.BaseFPS,
		Source:     est.Source,
	}
	for _, o := range s.observers {
		o.ObserveEstimation(record)
	}
	return est
}

// Stats snapshots the engine counters
func (s *EstimationService) Stats() models.EngineStats {
	s.mu.Lock()
	counts := make(map[models.Source]uint64, len(s.counts))
	for source, n := range s.counts {
		counts[source] = n
	}
	s.mu.Unlock()

	stats := models.EngineStats{
		Estimations:        counts,
		ProviderErrors:     s.providerErrors.Load(),
		ProviderConfigured: s.ProviderConfigured(),
		Timestamp:          time.Now(),
	}
	if mc, ok := s.cache.(interface{ Stats() CacheStats }); ok {
		cs := mc.Stats()
		stats.CacheEntries = cs.Entries
		stats.CacheHits = cs.Hits
		stats.CacheMisses = cs.Misses
		stats.CacheStale = cs.Stale
	}
	return stats
}
