package httpapi

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/spicecart/internal/cart"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/nikolayk812/spicecart/pkg/logger"
	"github.com/shopspring/decimal"
	"net/http"
	"strconv"
	"time"
)

const SessionHeader = "X-Cart-Session"

type handlers struct {
	sessions *Sessions
	log      *logger.Logger
	now      func() time.Time
}

// open resolves the session, locks it and makes sure its cart is hydrated.
// On success the caller must release the session.
func (h *handlers) open(ctx context.Context, w http.ResponseWriter, sessionID string) (*session, bool) {
	sess, err := h.sessions.acquire(sessionID)
	if err != nil {
		h.log.Error(ctx, "failed to open cart session", err)
		writeError(ctx, h.log, w, http.StatusInternalServerError, CodeInternal, "failed to open cart session", nil)
		return nil, false
	}

	sess.mu.Lock()
	if err := h.sessions.hydrate(ctx, sess); err != nil {
		sess.mu.Unlock()
		h.sessions.release(sess)
		h.log.Warn(ctx, "failed to restore cart", err)
		writeError(ctx, h.log, w, http.StatusServiceUnavailable, CodeUnavailable, "cart storage is unavailable, please retry", nil)
		return nil, false
	}
	return sess, true
}

func (h *handlers) release(sess *session) {
	sess.mu.Unlock()
	h.sessions.release(sess)
}

// withSession runs op on the caller's cart and replies with the resulting
// cart and the notifications op produced. op runs to completion even if the
// client goes away, so an accepted change is always persisted.
func (h *handlers) withSession(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, m *cart.Manager)) {
	sessionID, _, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	ctx := h.log.WithSessionID(r.Context(), sessionID)

	sess, ok := h.open(ctx, w, sessionID)
	if !ok {
		return
	}
	defer h.release(sess)

	op(context.WithoutCancel(ctx), sess.manager)

	writeSuccess(w, http.StatusOK, cartResponse{
		SessionID:     sessionID,
		Items:         mapItemsToResponse(sess.manager.Items()),
		Total:         sess.manager.Total(),
		ItemCount:     sess.manager.ItemCount(),
		Currency:      sess.manager.Currency().String(),
		Notifications: mapNotificationsToResponse(sess.recorder.Drain()),
	})
}

// sessionID reads or mints the caller's session id and echoes it back.
// minted reports a fresh id, which has no stored cart yet.
func (h *handlers) sessionID(w http.ResponseWriter, r *http.Request) (id string, minted, ok bool) {
	raw := r.Header.Get(SessionHeader)
	if raw == "" {
		id = uuid.NewString()
		w.Header().Set(SessionHeader, id)
		return id, true, true
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		writeError(r.Context(), h.log, w, http.StatusBadRequest, CodeValidation, "invalid session id",
			map[string]string{SessionHeader: "must be a uuid"})
		return "", false, false
	}
	id = parsed.String()
	w.Header().Set(SessionHeader, id)
	return id, false, true
}

func (h *handlers) getCart(w http.ResponseWriter, r *http.Request) {
	sessionID, minted, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if minted {
		writeSuccess(w, http.StatusOK, cartResponse{
			SessionID:     sessionID,
			Items:         []itemResponse{},
			Total:         decimal.Zero,
			Currency:      h.sessions.params.currencyCode(),
			Notifications: []notificationResponse{},
		})
		return
	}

	h.withSession(w, r, func(context.Context, *cart.Manager) {})
}

func (h *handlers) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeRequestError(w, r, err)
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	h.withSession(w, r, func(ctx context.Context, m *cart.Manager) {
		m.AddToCartTimes(ctx, req.Product.toDomain(), quantity)
	})
}

func (h *handlers) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	h.withSession(w, r, func(ctx context.Context, m *cart.Manager) {
		m.UpdateQuantity(ctx, id, *req.Quantity)
	})
}

func (h *handlers) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	h.withSession(w, r, func(ctx context.Context, m *cart.Manager) {
		m.RemoveFromCart(ctx, id)
	})
}

func (h *handlers) clearCart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, m *cart.Manager) {
		m.ClearCart(ctx)
	})
}

func (h *handlers) checkout(w http.ResponseWriter, r *http.Request) {
	sessionID, minted, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	ctx := h.log.WithSessionID(r.Context(), sessionID)
	if minted {
		writeError(ctx, h.log, w, http.StatusUnprocessableEntity, CodeEmptyCart, "your cart is empty", nil)
		return
	}

	sess, ok := h.open(ctx, w, sessionID)
	if !ok {
		return
	}
	snapshot, shortages, err := sess.manager.Checkout(h.now())
	h.release(sess)

	if errors.Is(err, domain.ErrEmptyCart) {
		writeError(ctx, h.log, w, http.StatusUnprocessableEntity, CodeEmptyCart, "your cart is empty", nil)
		return
	}
	if err != nil {
		h.log.Error(ctx, "failed to build checkout snapshot", err)
		writeError(ctx, h.log, w, http.StatusInternalServerError, CodeInternal, "failed to build checkout", nil)
		return
	}
	if len(shortages) > 0 {
		details := make([]string, 0, len(shortages))
		for _, s := range shortages {
			details = append(details, s.Error())
		}
		writeError(ctx, h.log, w, http.StatusConflict, CodeInsufficient, "insufficient stock", details)
		return
	}

	lines := make([]checkoutLineResponse, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, checkoutLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.Amount,
			Subtotal:  line.Subtotal.Amount,
		})
	}
	writeSuccess(w, http.StatusOK, checkoutResponse{
		SessionID:  sessionID,
		Lines:      lines,
		Total:      snapshot.Total.Amount,
		Currency:   snapshot.Total.Currency.String(),
		CapturedAt: snapshot.CapturedAt.UTC().Format(time.RFC3339),
	})
}

func (h *handlers) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(r.Context(), h.log, w, http.StatusBadRequest, CodeValidation, "invalid product id",
			map[string]string{"id": "must be an integer"})
		return 0, false
	}
	return id, true
}

func (h *handlers) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeError(r.Context(), h.log, w, http.StatusBadRequest, CodeValidation, reqErr.message, reqErr.details)
		return
	}
	writeError(r.Context(), h.log, w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
}
