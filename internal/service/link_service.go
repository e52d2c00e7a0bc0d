package service

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"golinks/constant"
	"golinks/internal/model"
	"golinks/internal/shortcode"
	"golinks/internal/store"
	"golinks/pkg/logging"
	"golinks/pkg/utils"
)

const (
	// MaxAttempts bounds the allocation retry loop. Ten conflicts in a row
	// against a 62^6 space means something is wrong with the store or the
	// generator, not bad luck.
	MaxAttempts = 10

	// storageTimeout bounds every storage round-trip so a stalled backend
	// fails fast instead of hanging a worker.
	storageTimeout = 10 * time.Second

	linkCacheTTL     = 3600 // seconds
	negativeCacheTTL = 300  // seconds

	// negativeCacheMarker is stored for codes known to be absent so repeated
	// lookups of dead codes do not hammer the database. It can never collide
	// with a real destination because stored URLs always have a scheme.
	negativeCacheMarker = "-"
)

// ErrAllocationExhausted is returned when MaxAttempts candidate codes all
// collided. The caller may resubmit the request for a fresh draw.
var ErrAllocationExhausted = errors.New("could not allocate a unique short code")

// LinkService implements code allocation, resolution and stats lookups on
// top of a LinkStore. The Redis pool is optional: when nil, the redirect
// cache and PV/UV recording are skipped and every operation goes straight
// to the store.
type LinkService struct {
	store store.LinkStore
	gen   shortcode.Generator
	pool  *redis.Pool
}

func NewLinkService(s store.LinkStore, gen shortcode.Generator, pool *redis.Pool) *LinkService {
	return &LinkService{
		store: s,
		gen:   gen,
		pool:  pool,
	}
}

// Allocate normalizes rawURL and durably reserves a fresh unique code for
// it. Uniqueness rests solely on the store's atomic conditional insert, so
// the loop stays correct with any number of concurrent allocators across
// processes.
func (s *LinkService) Allocate(ctx context.Context, rawURL string) (*model.Link, error) {
	longURL, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		link := &model.Link{
			Code:      s.gen.Generate(),
			LongURL:   longURL,
			CreatedAt: time.Now().UTC(),
			Clicks:    0,
		}

		opCtx, cancel := context.WithTimeout(ctx, storageTimeout)
		err := s.store.TryCreate(opCtx, link)
		cancel()

		if err == nil {
			return link, nil
		}
		if errors.Is(err, store.ErrCodeTaken) {
			logging.Logger.Info("Short code collision, retrying",
				zap.String("code", link.Code),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, err
	}

	logging.Logger.Error("Allocation attempts exhausted",
		zap.Int("max_attempts", MaxAttempts),
	)
	return nil, ErrAllocationExhausted
}

// Resolve returns the destination URL for code and accounts the click.
// The increment runs in its own goroutine so the redirect is never blocked
// on it; a failed increment is logged, never surfaced to the visitor.
func (s *LinkService) Resolve(ctx context.Context, code, ip string) (string, error) {
	if cached, ok := s.cacheGet(code); ok {
		if cached == negativeCacheMarker {
			return "", store.ErrNotFound
		}
		s.accountClick(code, ip)
		return cached, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	link, err := s.store.Get(opCtx, code)
	if errors.Is(err, store.ErrNotFound) {
		s.cacheSet(code, negativeCacheMarker, negativeCacheTTL)
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	s.cacheSet(code, link.LongURL, linkCacheTTL)
	s.accountClick(code, ip)
	return link.LongURL, nil
}

// Stats returns the stored link for code, or store.ErrNotFound.
func (s *LinkService) Stats(ctx context.Context, code string) (*model.Link, error) {
	opCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	return s.store.Get(opCtx, code)
}

// Top returns the leaderboard: up to n links by clicks descending, ties
// broken by code ascending.
func (s *LinkService) Top(ctx context.Context, n int) ([]model.Link, error) {
	opCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	return s.store.Top(opCtx, n)
}

// accountClick increments the durable click counter and records Redis PV/UV.
// Fire-and-forget relative to the caller's redirect; every failure leaves an
// operational trace.
func (s *LinkService) accountClick(code, ip string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		if err := s.store.IncrementClicks(ctx, code); err != nil {
			logging.Logger.Error("Failed to increment clicks",
				zap.String("code", code),
				zap.Error(err),
			)
		}
	}()

	if s.pool == nil {
		return
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "account_click"),
			)
		}
	}()

	RecordDailyPV(conn, code)
	RecordDailyUV(conn, code, ip)
	RecordTotalUV(conn, code, ip)
}

// cacheGet reads the redirect cache. Second return is false on a cache miss
// or any Redis error.
func (s *LinkService) cacheGet(code string) (string, bool) {
	if s.pool == nil {
		return "", false
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "cache_get"),
			)
		}
	}()

	cached, err := redis.String(conn.Do("GET", constant.GetLinkCacheKey(code)))
	if err != nil {
		if err != redis.ErrNil {
			logging.Logger.Warn("Error reading link cache",
				zap.String("code", code),
				zap.Error(err),
			)
		}
		return "", false
	}
	return cached, true
}

func (s *LinkService) cacheSet(code, value string, ttlSeconds int) {
	if s.pool == nil {
		return
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "cache_set"),
			)
		}
	}()

	if _, err := conn.Do("SET", constant.GetLinkCacheKey(code), value, "EX", ttlSeconds); err != nil {
		logging.Logger.Error("Failed to write link cache",
			zap.String("code", code),
			zap.Error(err),
		)
	}
}
