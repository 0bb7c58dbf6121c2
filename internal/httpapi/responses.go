package httpapi

import (
	"context"
	"encoding/json"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/pkg/logger"
	"github.com/shopspring/decimal"
	"net/http"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeEmptyCart    = "EMPTY_CART"
	CodeInsufficient = "INSUFFICIENT_STOCK"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "STORE_UNAVAILABLE"
)

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type notificationResponse struct {
	Message     string `json:"message"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}

type itemResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ImageURL      string          `json:"image_url"`
	ImageURLs     []string        `json:"image_urls"`
	Weight        string          `json:"weight,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    int64           `json:"category_id"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     string          `json:"created_at"`
}

type cartResponse struct {
	SessionID     string                 `json:"session_id"`
	Items         []itemResponse         `json:"items"`
	Total         decimal.Decimal        `json:"total"`
	ItemCount     int                    `json:"item_count"`
	Currency      string                 `json:"currency"`
	Notifications []notificationResponse `json:"notifications"`
}

type checkoutLineResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type checkoutResponse struct {
	SessionID  string                 `json:"session_id"`
	Lines      []checkoutLineResponse `json:"lines"`
	Total      decimal.Decimal        `json:"total"`
	Currency   string                 `json:"currency"`
	CapturedAt string                 `json:"captured_at"`
}

func mapItemsToResponse(items []domain.CartItem) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemResponse{
			ID:            item.ID,
			Name:          item.Name,
			Description:   item.Description,
			Price:         item.Price,
			Quantity:      item.Quantity,
			Subtotal:      item.Subtotal(),
			ImageURL:      item.ImageURL,
			ImageURLs:     item.ImageURLs,
			Weight:        item.Weight,
			StockQuantity: item.StockQuantity,
			CategoryID:    item.CategoryID,
			IsActive:      item.IsActive,
			CreatedAt:     item.CreatedAt,
		})
	}
	return out
}

func mapNotificationsToResponse(notes []port.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, notificationResponse{
			Message:     n.Message,
			Severity:    string(n.Severity),
			Description: n.Description,
		})
	}
	return out
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(ctx context.Context, log *logger.Logger, w http.ResponseWriter, status int, code, message string, details any) {
	if status >= http.StatusInternalServerError {
		log.Error(ctx, message, nil)
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message, Details: details}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
