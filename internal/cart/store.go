package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kadapaimran/grocery-storefront/pkg/localstore"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/metrics"
)

// Item is one cart line. Lines are kept in insertion order and ids may
// repeat: adding the same product twice produces two lines, never a merged
// one with a bumped quantity.
type Item struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImagePath string          `json:"imagePath,omitempty"`
	Quantity  int             `json:"quantity,omitempty"`
}

// OrderData is the order metadata recorded alongside a completed payment.
// Which fields are filled depends on the checkout flow that produced it.
type OrderData struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Email     string          `json:"email,omitempty"`
	CardLast4 string          `json:"cardLast4,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// PaymentRecord is an immutable snapshot of a completed checkout.
type PaymentRecord struct {
	ID        int64     `json:"id"`
	Items     []Item    `json:"items"`
	OrderData OrderData `json:"orderData"`
	Date      string    `json:"date"`
}

// Store owns the cart lines and the payment history. All reads hand out
// copies; the sequences are only mutated through the exposed operations.
// Every mutation is written through to the local store.
type Store struct {
	mu      sync.Mutex
	items   []Item
	history []PaymentRecord
	lastID  int64

	persist localstore.Store
	logger  *logger.Logger
	metrics *metrics.StorefrontMetrics

	now func() time.Time
}

// NewStore rehydrates cart state from the local store and returns the
// container. Missing keys are treated as an empty cart, not an error.
func NewStore(persist localstore.Store, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Store, error) {
	if persist == nil {
		return nil, fmt.Errorf("local store required")
	}

	s := &Store{
		persist: persist,
		logger:  logg,
		metrics: m,
		now:     time.Now,
	}

	if err := persist.Load(localstore.KeyCartItems, &s.items); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return nil, fmt.Errorf("rehydrating cart items: %w", err)
	}
	if err := persist.Load(localstore.KeyPaymentHistory, &s.history); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return nil, fmt.Errorf("rehydrating payment history: %w", err)
	}
	for _, record := range s.history {
		if record.ID > s.lastID {
			s.lastID = record.ID
		}
	}

	return s, nil
}

// Add appends the item unconditionally, even when a line with the same id
// already exists.
func (s *Store) Add(ctx context.Context, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, item)
	s.metrics.IncCartOp("add")
	s.saveItems(ctx)
}

// Remove drops every line whose id matches. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.metrics.IncCartOp("remove")
	s.saveItems(ctx)
}

// SetQuantity updates the quantity on lines matching id. The store does not
// clamp sub-1 quantities; callers route those to Remove instead.
func (s *Store) SetQuantity(ctx context.Context, id int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
		}
	}
	s.metrics.IncCartOp("set_quantity")
	s.saveItems(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.metrics.IncCartOp("clear")
	s.saveItems(ctx)
}

// Items returns a copy of the current cart lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// TotalPrice sums price times quantity across the cart. A zero quantity
// counts as 1.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(effectiveQuantity(item)))))
	}
	return total
}

// Count sums quantities across the cart, defaulting zero quantities to 1.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += effectiveQuantity(item)
	}
	return count
}

// CompletePayment snapshots the cart into a new payment record, appends it to
// the history, and empties the cart. On an empty cart it does nothing and
// returns nil.
func (s *Store) CompletePayment(ctx context.Context, order OrderData) *PaymentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil
	}

	record := PaymentRecord{
		ID:        s.nextRecordID(),
		Items:     copyItems(s.items),
		OrderData: order,
		Date:      s.now().Format(time.RFC3339),
	}
	s.history = append(s.history, record)
	s.items = nil

	s.metrics.IncCartOp("complete_payment")
	s.saveItems(ctx)
	s.saveHistory(ctx)

	result := record
	result.Items = copyItems(record.Items)
	return &result
}

// History returns a copy of the payment history, oldest first.
func (s *Store) History() []PaymentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PaymentRecord, len(s.history))
	for i, record := range s.history {
		out[i] = record
		out[i].Items = copyItems(record.Items)
	}
	return out
}

// nextRecordID derives an id from the wall clock while staying strictly
// monotonic across same-millisecond completions. Caller holds the lock.
func (s *Store) nextRecordID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) saveItems(ctx context.Context) {
	if err := s.persist.Save(localstore.KeyCartItems, s.items); err != nil && s.logger != nil {
		s.logger.Error(ctx, "persisting cart items", err)
	}
}

func (s *Store) saveHistory(ctx context.Context) {
	if err := s.persist.Save(localstore.KeyPaymentHistory, s.history); err != nil && s.logger != nil {
		s.logger.Error(ctx, "persisting payment history", err)
	}
}

func copyItems(items []Item) []Item {
	if len(items) == 0 {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func effectiveQuantity(item Item) int {
	if item.Quantity <= 0 {
		return 1
	}
	return item.Quantity
}
