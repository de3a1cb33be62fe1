package orderstatus

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// DefaultCallbackTTL is how long a handled callback is remembered.
const DefaultCallbackTTL = 7 * 24 * time.Hour

// ViewForStatus maps a payment callback status to the page it lands on.
func ViewForStatus(status string) View {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success":
		return ViewOrderSuccess
	case "failed":
		return ViewPaymentFailed
	case "pending":
		return ViewOrderPending
	}
	return ViewOrderFailed
}

// Ledger claims a callback for an order. It returns false when the order was claimed
// before.
type Ledger interface {
	MarkPaymentProcessed(ctx context.Context, orderID, outcome string, ttl time.Duration) (bool, error)
}

// Callbacks resolves payment callbacks, showing payment-already-processed for repeats.
type Callbacks struct {
	ledger Ledger
	ttl    time.Duration
	logg   *logger.Logger
}

func NewCallbacks(ledger Ledger, ttl time.Duration, logg *logger.Logger) *Callbacks {
	if ttl <= 0 {
		ttl = DefaultCallbackTTL
	}
	return &Callbacks{ledger: ledger, ttl: ttl, logg: logg}
}

// Resolve claims the order's callback and returns the view to redirect to. A ledger
// failure still resolves by status so the shopper is never stranded.
func (c *Callbacks) Resolve(ctx context.Context, orderID, status string) (View, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return ViewOrderFailed, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	view := ViewForStatus(status)
	if c == nil || c.ledger == nil {
		return view, nil
	}

	ctx = c.logg.WithFields(ctx, map[string]any{"order_id": orderID, "payment_status": status})
	first, err := c.ledger.MarkPaymentProcessed(ctx, orderID, string(view), c.ttl)
	if err != nil {
		c.logg.Error(ctx, "payment_callback.ledger_failed", err)
		return view, nil
	}
	if !first {
		c.logg.Info(ctx, "payment_callback.repeat")
		return ViewPaymentAlreadyProcessed, nil
	}
	c.logg.Info(c.logg.WithField(ctx, "view", string(view)), "payment_callback.resolved")
	return view, nil
}

// MemoryLedger is the in-process Ledger used when redis is not configured.
type MemoryLedger struct {
	mu      sync.Mutex
	now     func() time.Time
	claimed map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{now: time.Now, claimed: map[string]time.Time{}}
}

func (m *MemoryLedger) MarkPaymentProcessed(_ context.Context, orderID, _ string, ttl time.Duration) (bool, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if expires, ok := m.claimed[orderID]; ok && now.Before(expires) {
		return false, nil
	}
	m.claimed[orderID] = now.Add(ttl)
	return true, nil
}
