package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/loading"
	"github.com/angelmondragon/storefront/pkg/backend"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	"go.uber.org/multierr"
)

var (
	ErrRegistryClosed = errors.New("cart registry closed")
	ErrShopperKey     = errors.New("shopper key is required")
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Registry owns one Store per shopper for the life of the process. Stores are created
// and initialised on first use and disposed after sitting idle for the configured TTL.
type Registry struct {
	api           API
	gate          *loading.Gate
	logg          *logger.Logger
	idleTTL       time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
	closed bool
}

// entry pairs a store with the channel closed once its mount-time refresh has finished.
type entry struct {
	store *Store
	ready chan struct{}
}

func NewRegistry(api API, gate *loading.Gate, logg *logger.Logger, cfg config.CartConfig) *Registry {
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = defaultSweepInterval
	}
	return &Registry{
		api:           api,
		gate:          gate,
		logg:          logg,
		idleTTL:       idle,
		sweepInterval: sweep,
		now:           time.Now,
		stores:        map[string]*entry{},
	}
}

// Get returns the shopper's store, creating and initialising it on first use. Callers
// racing the first one wait for the initial refresh, so nobody sees an unloaded cart. A
// failed initial refresh is logged and the empty store is still returned.
func (r *Registry) Get(ctx context.Context, key string, identity backend.Identity) (*Store, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrShopperKey
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if e, ok := r.stores[key]; ok {
		r.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		e.store.touch()
		return e.store, nil
	}
	e := &entry{store: NewStore(r.api, r.gate, r.logg, identity), ready: make(chan struct{})}
	r.stores[key] = e
	r.mu.Unlock()

	defer close(e.ready)
	// waiters share this load, so it outlives the first caller's disconnect
	if err := e.store.Init(context.WithoutCancel(ctx)); err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "shopper_key", key), "cart.init_refresh_failed")
	}
	return e.store, nil
}

// Resolve returns the shopper's store with its token aligned to the request. A login seen
// first by this process (another instance bound the token) is merged here.
func (r *Registry) Resolve(ctx context.Context, key string, identity backend.Identity) (*Store, error) {
	store, err := r.Get(ctx, key, identity)
	if err != nil {
		return nil, err
	}
	if store.Identity().Token == strings.TrimSpace(identity.Token) {
		return store, nil
	}
	if err := store.SetToken(ctx, identity.Token); err != nil {
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"shopper_key": key, "reason": err.Error()}), "cart.token_sync_failed")
	}
	return store, nil
}

// Len reports how many shopper stores are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep disposes stores idle for longer than the TTL and returns how many it evicted.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var idle []*Store
	for key, e := range r.stores {
		if now.Sub(e.store.idleSince()) >= r.idleTTL {
			idle = append(idle, e.store)
			delete(r.stores, key)
		}
	}
	r.mu.Unlock()

	for _, store := range idle {
		_ = store.Dispose()
	}
	return len(idle)
}

// Run sweeps on an interval until ctx is done, then closes the registry.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.Close()
		case <-ticker.C:
			if evicted := r.Sweep(r.now()); evicted > 0 {
				r.logg.Info(r.logg.WithField(ctx, "evicted", evicted), "cart.registry_swept")
			}
		}
	}
}

// Close disposes every store; further Get calls fail with ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stores := r.stores
	r.stores = map[string]*entry{}
	r.mu.Unlock()

	var errs error
	for _, e := range stores {
		errs = multierr.Append(errs, e.store.Dispose())
	}
	return errs
}
