package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/storefront/internal/loading"
	"github.com/angelmondragon/storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
	"go.uber.org/multierr"
)

var (
	ErrDisposed      = errors.New("cart store disposed")
	ErrLoginRequired = pkgerrors.New(pkgerrors.CodeUnauthorized, "Please log in to save items to your wishlist.")
)

// AddArgs identifies the variant and quantity to add.
type AddArgs struct {
	ProductVariantID string `json:"productVariantId" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,min=1,max=99"`
}

// UpdateArgs changes quantity and/or variant of an existing line.
type UpdateArgs = backend.UpdateCartItemRequest

// Snapshot is a copy of the store state safe to hand to callers.
type Snapshot struct {
	CartID string           `json:"cartId"`
	Items  []types.CartItem `json:"items"`
	Count  int              `json:"count"`
}

// Store mirrors one shopper's server-side cart. The backend is authoritative: every
// successful mutation is followed by a full refresh that replaces local state wholesale.
// Calls are not queued, so concurrent mutations race and the last refresh to land wins;
// the mutex only keeps reads and writes of the local copy memory safe.
type Store struct {
	api  API
	gate *loading.Gate
	logg *logger.Logger

	mu       sync.RWMutex
	identity backend.Identity
	items    []types.CartItem
	cartID   string
	disposed bool

	lastUsed atomic.Int64
}

func NewStore(api API, gate *loading.Gate, logg *logger.Logger, identity backend.Identity) *Store {
	s := &Store{
		api:      api,
		gate:     gate,
		logg:     logg,
		identity: identity,
		items:    []types.CartItem{},
	}
	s.touch()
	return s
}

// Init performs the mount-time refresh.
func (s *Store) Init(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Dispose ends the store; later operations fail with ErrDisposed.
func (s *Store) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	s.disposed = true
	s.items = nil
	s.cartID = ""
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]types.CartItem, len(s.items))
	copy(items, s.items)
	return Snapshot{CartID: s.cartID, Items: items, Count: types.SumQuantity(s.items)}
}

func (s *Store) Items() []types.CartItem {
	return s.Snapshot().Items
}

func (s *Store) CartID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartID
}

// Count is the sum of quantities across the current items.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.SumQuantity(s.items)
}

func (s *Store) Identity() backend.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Refresh replaces local state with the backend cart. A failed refresh leaves state as is.
func (s *Store) Refresh(ctx context.Context) error {
	id, err := s.begin()
	if err != nil {
		return err
	}

	res := s.api.GetCart(ctx, id)
	if !res.Success {
		s.logg.Warn(s.logg.WithField(ctx, "reason", res.Message), "cart.refresh_failed")
		return res.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	s.items = res.Data.Items
	if s.items == nil {
		s.items = []types.CartItem{}
	}
	s.cartID = res.Data.CartID
	return nil
}

// AddToCart reports whether the backend accepted the item. The error explains a rejection.
func (s *Store) AddToCart(ctx context.Context, args AddArgs) (bool, error) {
	release := s.gate.Enter()
	defer release()

	id, err := s.begin()
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(args.ProductVariantID) == "" || args.Quantity < 1 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "Please choose a size and quantity.")
	}

	res := s.api.AddCartItem(ctx, id, backend.AddCartItemRequest{
		ProductVariantID: args.ProductVariantID,
		Quantity:         args.Quantity,
	})
	return s.afterMutation(ctx, "cart.add", res)
}

func (s *Store) RemoveFromCart(ctx context.Context, itemID string) (bool, error) {
	release := s.gate.Enter()
	defer release()

	id, err := s.begin()
	if err != nil {
		return false, err
	}
	res := s.api.RemoveCartItem(ctx, id, itemID)
	return s.afterMutation(ctx, "cart.remove", res)
}

func (s *Store) UpdateCartItem(ctx context.Context, itemID string, args UpdateArgs) (bool, error) {
	release := s.gate.Enter()
	defer release()

	id, err := s.begin()
	if err != nil {
		return false, err
	}
	res := s.api.UpdateCartItem(ctx, id, itemID, args)
	return s.afterMutation(ctx, "cart.update", res)
}

// MoveToWishlist saves the item to the wishlist and then removes it from the cart. The two
// steps are not atomic: when the removal fails after the wishlist add succeeded the item
// sits in both places, the call reports false and the error combines every failure.
func (s *Store) MoveToWishlist(ctx context.Context, item types.CartItem) (bool, error) {
	id, err := s.begin()
	if err != nil {
		return false, err
	}
	if !id.Authenticated() {
		return false, ErrLoginRequired
	}

	release := s.gate.Enter()
	defer release()

	added := s.api.AddToWishlist(ctx, id, item.WishlistProductID())
	if !added.Success {
		return false, added.Err()
	}

	var combined error
	removed := s.api.RemoveCartItem(ctx, id, item.ID)
	if !removed.Success {
		combined = multierr.Append(combined, pkgerrors.Wrap(pkgerrors.CodeRejected, removed.Err(), "Saved to your wishlist, but we couldn't remove it from your cart."))
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"item_id": item.ID,
			"reason":  removed.Message,
		}), "cart.move_to_wishlist_partial")
	}

	if err := s.Refresh(ctx); err != nil {
		combined = multierr.Append(combined, err)
	}
	if !removed.Success {
		return false, combined
	}
	s.logRefreshFailure(ctx, "cart.move_to_wishlist", combined)
	return true, nil
}

// SetToken applies a login or logout. On the absent to present transition the guest cart
// is merged exactly once before the single follow-up refresh. Logout refreshes against
// the anonymous session. Re-applying the current token is a no-op. Any other token change
// discards the local cart and refreshes against the new token without merging.
func (s *Store) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	previous := s.identity.Token
	if previous == token {
		s.mu.Unlock()
		return nil
	}
	s.identity.Token = token
	sessionID := s.identity.SessionID
	s.mu.Unlock()
	s.touch()

	switch {
	case previous == "" && token != "":
		release := s.gate.Enter()
		defer release()

		var mergeErr error
		if merged := s.api.MergeGuestCart(ctx, token, sessionID); !merged.Success {
			mergeErr = merged.Err()
			s.logg.Warn(s.logg.WithField(ctx, "reason", merged.Message), "cart.merge_failed")
		}
		return multierr.Append(mergeErr, s.Refresh(ctx))
	case token == "":
		return s.Refresh(ctx)
	default:
		// another account: nothing of the previous cart may survive a failed refresh
		release := s.gate.Enter()
		defer release()

		s.mu.Lock()
		s.items = []types.CartItem{}
		s.cartID = ""
		s.mu.Unlock()
		return s.Refresh(ctx)
	}
}

// begin checks the store is live and returns the identity for the call.
func (s *Store) begin() (backend.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return backend.Identity{}, ErrDisposed
	}
	s.touch()
	return s.identity, nil
}

func (s *Store) afterMutation(ctx context.Context, op string, res backend.Result[backend.Ack]) (bool, error) {
	if !res.Success {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": op, "reason": res.Message}), "cart.mutation_rejected")
		return false, res.Err()
	}
	s.logRefreshFailure(ctx, op, s.Refresh(ctx))
	return true, nil
}

func (s *Store) logRefreshFailure(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": op, "error": err.Error()}), "cart.refresh_after_mutation_failed")
}

func (s *Store) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

func (s *Store) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}
