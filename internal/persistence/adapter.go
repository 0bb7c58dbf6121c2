package persistence

import (
	"context"
	"errors"
	"fmt"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/nikolayk812/spicecart/internal/metrics"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/pkg/logger"
)

const DefaultKey = "cart"

const (
	msgRecovered        = "Cart saved successfully!"
	msgQuotaExceeded    = "Storage is full. Cart will be saved temporarily."
	descQuotaExceeded   = "Your cart items will be lost when you refresh the page. Please clear some browser data."
	msgTemporaryStorage = "Using temporary cart storage"
	descTemporary       = "Cart items will be lost when you refresh the page."
)

type Options struct {
	// Key defaults to DefaultKey.
	Key string
	// Fallback defaults to a fresh FallbackState owned by the adapter.
	Fallback *FallbackState
	Notifier port.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
}

// Adapter saves carts to a KVStore and keeps them in memory when the store
// cannot take the write. None of its methods return errors.
type Adapter struct {
	store    port.KVStore
	key      string
	fallback *FallbackState
	notifier port.Notifier
	log      *logger.Logger
	metrics  *metrics.CartMetrics
}

func NewAdapter(store port.KVStore, opts Options) *Adapter {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Fallback == nil {
		opts.Fallback = NewFallbackState()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Adapter{
		store:    store,
		key:      opts.Key,
		fallback: opts.Fallback,
		notifier: opts.Notifier,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

func (a *Adapter) Key() string {
	return a.key
}

func (a *Adapter) Fallback() *FallbackState {
	return a.fallback
}

// Save writes items to the durable store. On failure the items are kept in
// the fallback buffer and the user is warned once per entry into fallback.
func (a *Adapter) Save(ctx context.Context, items []domain.CartItem) {
	ctx = a.log.WithField(ctx, "cart_key", a.key)

	err := a.write(ctx, items)
	if err == nil {
		a.metrics.ObserveWrite(metrics.ResultSuccess)
		if a.fallback.leave(items) {
			a.metrics.ObserveFallback(metrics.DirectionRecover, metrics.ReasonNone)
			a.log.Info(ctx, "cart storage recovered, leaving in-memory fallback")
			a.notify(ctx, port.Notification{Message: msgRecovered, Severity: port.SeveritySuccess})
		}
		return
	}

	a.metrics.ObserveWrite(metrics.ResultFailure)
	a.log.Warn(ctx, "failed to save cart to durable storage", err)

	if !a.fallback.enter(items) {
		return
	}

	if errors.Is(err, port.ErrQuotaExceeded) {
		a.metrics.ObserveFallback(metrics.DirectionEnter, metrics.ReasonQuota)
		a.notify(ctx, port.Notification{
			Message:     msgQuotaExceeded,
			Severity:    port.SeverityError,
			Description: descQuotaExceeded,
		})
		return
	}

	a.metrics.ObserveFallback(metrics.DirectionEnter, metrics.ReasonUnavailable)
	a.notify(ctx, port.Notification{
		Message:     msgTemporaryStorage,
		Severity:    port.SeverityWarning,
		Description: descTemporary,
	})
}

// Load restores the persisted cart. A stored array is returned as is, even
// when empty. Missing, corrupt or unreadable data falls back to the in-memory
// buffer when fallback is active, and to an empty cart otherwise.
func (a *Adapter) Load(ctx context.Context) []domain.CartItem {
	items, _ := a.Restore(ctx)
	return items
}

// Restore is Load that also reports a failed store read, so callers can tell
// an empty cart from one that could not be read. The items follow Load's
// rules either way.
func (a *Adapter) Restore(ctx context.Context) ([]domain.CartItem, error) {
	ctx = a.log.WithField(ctx, "cart_key", a.key)

	items, ok, readErr := a.read(ctx)
	if ok {
		a.metrics.ObserveHydration(metrics.SourceDurable)
		return items, nil
	}

	if buffered, ok := a.fallback.snapshot(); ok {
		a.metrics.ObserveHydration(metrics.SourceFallback)
		return buffered, readErr
	}

	a.metrics.ObserveHydration(metrics.SourceEmpty)
	return []domain.CartItem{}, readErr
}

func (a *Adapter) write(ctx context.Context, items []domain.CartItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.key, payload)
}

// read returns the decoded cart and whether it should be used. err is set
// only when the store itself failed.
func (a *Adapter) read(ctx context.Context) ([]domain.CartItem, bool, error) {
	payload, found, err := a.store.Get(ctx, a.key)
	if err != nil {
		a.log.Warn(ctx, "failed to load cart from durable storage", err)
		return nil, false, fmt.Errorf("store.Get key[%s]: %w", a.key, err)
	}
	if !found || payload == "" {
		return nil, false, nil
	}

	result, err := decodeItems(payload)
	if err != nil {
		a.log.Warn(ctx, "discarding malformed persisted cart", err)
		return nil, false, nil
	}
	if !result.isArray {
		a.log.Warn(ctx, "persisted cart is not an array, starting empty", nil)
		return []domain.CartItem{}, true, nil
	}
	if result.skipped > 0 {
		a.log.Warn(a.log.WithField(ctx, "skipped", result.skipped), "skipped malformed cart lines", nil)
	}
	return result.items, true, nil
}

func (a *Adapter) notify(ctx context.Context, n port.Notification) {
	if a.notifier == nil {
		return
	}
	a.notifier.Notify(ctx, n)
}
