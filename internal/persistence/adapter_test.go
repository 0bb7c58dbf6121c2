package persistence

import (
	"context"
	"errors"
	"fmt"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type fakeStore struct {
	entries map[string]string
	setErr  error
	getErr  error
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

type noteRecorder struct {
	notes []port.Notification
}

func (r *noteRecorder) Notify(_ context.Context, n port.Notification) {
	r.notes = append(r.notes, n)
}

func newTestAdapter(store port.KVStore) (*Adapter, *noteRecorder) {
	rec := &noteRecorder{}
	return NewAdapter(store, Options{Notifier: rec}), rec
}

func TestAdapterRoundTrip(t *testing.T) {
	ctx := t.Context()
	store := newFakeStore()
	adapter, rec := newTestAdapter(store)

	items := randomItems(3)
	adapter.Save(ctx, items)

	assertItems(t, items, adapter.Load(ctx))
	assert.Empty(t, rec.notes)
	assert.Contains(t, store.entries, DefaultKey)
}

func TestAdapterRoundTripEmpty(t *testing.T) {
	ctx := t.Context()
	adapter, _ := newTestAdapter(newFakeStore())

	adapter.Save(ctx, []domain.CartItem{})

	got := adapter.Load(ctx)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAdapterSaveFailureEntersFallbackOnce(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantSeverity port.Severity
		wantMessage  string
		wantDesc     string
	}{
		{
			name:         "quota exceeded",
			err:          fmt.Errorf("set: %w", port.ErrQuotaExceeded),
			wantSeverity: port.SeverityError,
			wantMessage:  "Storage is full. Cart will be saved temporarily.",
			wantDesc:     "Your cart items will be lost when you refresh the page. Please clear some browser data.",
		},
		{
			name:         "unavailable",
			err:          fmt.Errorf("set: %w", port.ErrUnavailable),
			wantSeverity: port.SeverityWarning,
			wantMessage:  "Using temporary cart storage",
			wantDesc:     "Cart items will be lost when you refresh the page.",
		},
		{
			name:         "unclassified error treated as unavailable",
			err:          errors.New("boom"),
			wantSeverity: port.SeverityWarning,
			wantMessage:  "Using temporary cart storage",
			wantDesc:     "Cart items will be lost when you refresh the page.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			store := newFakeStore()
			store.setErr = tt.err
			adapter, rec := newTestAdapter(store)

			first := randomItems(1)
			adapter.Save(ctx, first)
			second := randomItems(2)
			adapter.Save(ctx, second)

			require.Len(t, rec.notes, 1)
			assert.Equal(t, port.Notification{
				Message:     tt.wantMessage,
				Severity:    tt.wantSeverity,
				Description: tt.wantDesc,
			}, rec.notes[0])
			assert.True(t, adapter.Fallback().Active())

			// the latest state is what comes back
			assertItems(t, second, adapter.Load(ctx))
		})
	}
}

func TestAdapterRecovery(t *testing.T) {
	ctx := t.Context()
	store := newFakeStore()
	adapter, rec := newTestAdapter(store)

	store.setErr = port.ErrUnavailable
	adapter.Save(ctx, randomItems(1))
	require.True(t, adapter.Fallback().Active())

	store.setErr = nil
	adapter.Save(ctx, []domain.CartItem{})
	assert.True(t, adapter.Fallback().Active(), "an empty cart does not end fallback")

	items := randomItems(2)
	adapter.Save(ctx, items)
	assert.False(t, adapter.Fallback().Active())

	require.Len(t, rec.notes, 2)
	assert.Equal(t, port.Notification{Message: "Cart saved successfully!", Severity: port.SeveritySuccess}, rec.notes[1])

	adapter.Save(ctx, items)
	assert.Len(t, rec.notes, 2, "recovery is announced once")

	// failing again is a new transition and warns again
	store.setErr = port.ErrUnavailable
	adapter.Save(ctx, items)
	assert.Len(t, rec.notes, 3)
}

func TestAdapterLoad(t *testing.T) {
	buffered := randomItems(2)

	tests := []struct {
		name     string
		stored   *string
		getErr   error
		fallback bool
		want     []domain.CartItem
	}{
		{name: "absent, no fallback: empty", want: []domain.CartItem{}},
		{name: "absent, fallback: buffer", fallback: true, want: buffered},
		{name: "malformed, no fallback: empty", stored: ptr("not-json"), want: []domain.CartItem{}},
		{name: "malformed, fallback: buffer", stored: ptr("{oops"), fallback: true, want: buffered},
		{name: "empty string, fallback: buffer", stored: ptr(""), fallback: true, want: buffered},
		{name: "not an array, fallback: empty", stored: ptr(`{"id":1}`), fallback: true, want: []domain.CartItem{}},
		{name: "stored empty array wins over buffer", stored: ptr("[]"), fallback: true, want: []domain.CartItem{}},
		{name: "store error, no fallback: empty", getErr: port.ErrUnavailable, want: []domain.CartItem{}},
		{name: "store error, fallback: buffer", getErr: port.ErrUnavailable, fallback: true, want: buffered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			store := newFakeStore()
			adapter, _ := newTestAdapter(store)

			if tt.fallback {
				store.setErr = port.ErrUnavailable
				adapter.Save(ctx, buffered)
				store.setErr = nil
			}
			if tt.stored != nil {
				store.entries[DefaultKey] = *tt.stored
			}
			store.getErr = tt.getErr

			got := adapter.Load(ctx)
			require.NotNil(t, got)
			assertItems(t, tt.want, got)
		})
	}
}

func TestAdapterRestoreReportsStoreErrors(t *testing.T) {
	ctx := t.Context()
	store := newFakeStore()
	adapter, _ := newTestAdapter(store)

	items, err := adapter.Restore(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	store.entries[DefaultKey] = "{oops"
	items, err = adapter.Restore(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	store.getErr = port.ErrUnavailable
	items, err = adapter.Restore(ctx)
	require.ErrorIs(t, err, port.ErrUnavailable)
	require.NotNil(t, items)
	assert.Empty(t, items)

	buffered := randomItems(2)
	store.setErr = port.ErrUnavailable
	adapter.Save(ctx, buffered)

	items, err = adapter.Restore(ctx)
	require.ErrorIs(t, err, port.ErrUnavailable)
	assertItems(t, buffered, items)
}

func TestAdapterLoadReturnsCopyOfBuffer(t *testing.T) {
	ctx := t.Context()
	store := newFakeStore()
	store.setErr = port.ErrUnavailable
	adapter, _ := newTestAdapter(store)

	items := randomItems(1)
	adapter.Save(ctx, items)

	got := adapter.Load(ctx)
	got[0].Quantity = 999

	assertItems(t, items, adapter.Load(ctx))
}

func TestAdaptersShareFallbackState(t *testing.T) {
	ctx := t.Context()
	store := newFakeStore()
	store.setErr = port.ErrQuotaExceeded
	shared := NewFallbackState()
	rec := &noteRecorder{}

	a := NewAdapter(store, Options{Fallback: shared, Notifier: rec})
	b := NewAdapter(store, Options{Fallback: shared, Notifier: rec, Key: "cart:other"})

	items := randomItems(1)
	a.Save(ctx, items)
	b.Save(ctx, items)

	assert.Len(t, rec.notes, 1)
	assert.Equal(t, "cart:other", b.Key())
	assertItems(t, items, b.Load(ctx))
}

func ptr(s string) *string {
	return &s
}

func randomItems(n int) []domain.CartItem {
	items := make([]domain.CartItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.CartItem{
			Product: domain.Product{
				ID:            int64(i + 1),
				Name:          gofakeit.ProductName(),
				Description:   gofakeit.ProductDescription(),
				Price:         decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
				ImageURL:      gofakeit.URL(),
				ImageURLs:     []string{gofakeit.URL()},
				StockQuantity: gofakeit.IntRange(1, 50),
				CategoryID:    int64(gofakeit.IntRange(1, 5)),
				IsActive:      gofakeit.Bool(),
				CreatedAt:     "2025-01-02T03:04:05Z",
			},
			Quantity: gofakeit.IntRange(1, 9),
		})
	}
	return items
}

func assertItems(t *testing.T, expected, actual []domain.CartItem) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer, cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}
