package cart

import (
	"context"
	"fmt"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/nikolayk812/spicecart/internal/metrics"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"sync"
	"time"
)

// Persister stores and restores cart snapshots without surfacing errors.
type Persister interface {
	Save(ctx context.Context, items []domain.CartItem)
	Load(ctx context.Context) []domain.CartItem
}

type ManagerParams struct {
	Persister Persister
	Notifier  port.Notifier
	Metrics   *metrics.CartMetrics
	Currency  currency.Unit
}

// Manager is the entry point for cart changes. Every change is reduced, then
// persisted, then announced.
type Manager struct {
	mu        sync.Mutex
	state     domain.Cart
	persister Persister
	notifier  port.Notifier
	metrics   *metrics.CartMetrics
	currency  currency.Unit
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Persister == nil {
		return nil, fmt.Errorf("persister is nil")
	}
	unit := params.Currency
	if unit == (currency.Unit{}) {
		unit = currency.INR
	}
	return &Manager{
		state:     domain.Cart{Items: []domain.CartItem{}},
		persister: params.Persister,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		currency:  unit,
	}, nil
}

// Hydrate loads the persisted cart. It is meant to run once, before any
// other operation.
func (m *Manager) Hydrate(ctx context.Context) {
	m.Restore(ctx, m.persister.Load(ctx))
}

// Restore replaces the cart with items loaded by the caller and persists
// them. An empty load leaves the cart and the store untouched.
func (m *Manager) Restore(ctx context.Context, items []domain.CartItem) {
	if len(items) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(ctx, LoadCart{Items: items})
}

func (m *Manager) AddToCart(ctx context.Context, product domain.Product) {
	m.mu.Lock()
	m.apply(ctx, AddItem{Product: product})
	m.mu.Unlock()

	m.notify(ctx, port.Notification{
		Message:  fmt.Sprintf("%s added to cart!", product.Name),
		Severity: port.SeveritySuccess,
	})
}

// AddToCartTimes adds n units one AddToCart call at a time, the way product
// cards do.
func (m *Manager) AddToCartTimes(ctx context.Context, product domain.Product, n int) {
	for i := 0; i < n; i++ {
		m.AddToCart(ctx, product)
	}
}

func (m *Manager) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (m *Manager) RemoveFromCart(ctx context.Context, id int64) {
	m.mu.Lock()
	item, existed := m.state.Find(id)
	m.apply(ctx, RemoveItem{ID: id})
	m.mu.Unlock()

	if existed {
		m.notify(ctx, port.Notification{
			Message:  fmt.Sprintf("%s removed from cart", item.Name),
			Severity: port.SeveritySuccess,
		})
	}
}

func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	m.apply(ctx, ClearCart{})
	m.mu.Unlock()

	m.notify(ctx, port.Notification{Message: "Cart cleared", Severity: port.SeveritySuccess})
}

// Items returns a copy of the current lines.
func (m *Manager) Items() []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CloneItems(m.state.Items)
}

func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Total()
}

func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ItemCount()
}

func (m *Manager) Currency() currency.Unit {
	return m.currency
}

// Checkout snapshots the cart for order placement. Stock shortages are
// reported alongside the snapshot, the caller decides whether to proceed.
func (m *Manager) Checkout(now time.Time) (domain.CheckoutSnapshot, []domain.StockShortage, error) {
	m.mu.Lock()
	state := m.state.Clone()
	m.mu.Unlock()

	snapshot, err := state.Checkout(m.currency, now)
	if err != nil {
		return domain.CheckoutSnapshot{}, nil, err
	}
	return snapshot, state.Shortages(), nil
}

// apply must be called with mu held.
func (m *Manager) apply(ctx context.Context, action Action) {
	m.state = Reduce(m.state, action)
	m.metrics.ObserveAction(action.actionName())
	m.persister.Save(ctx, domain.CloneItems(m.state.Items))
}

func (m *Manager) notify(ctx context.Context, n port.Notification) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, n)
}
