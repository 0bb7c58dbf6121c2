package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/shopspring/decimal"
)

// storedItem is the persisted shape of one cart line. Field names follow the
// storefront's product rows.
type storedItem struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Price         json.Number `json:"price"`
	Quantity      int         `json:"quantity"`
	ImageURL      string      `json:"image_url"`
	Weight        string      `json:"weight,omitempty"`
	Description   string      `json:"description"`
	ImageURLs     []string    `json:"image_urls"`
	StockQuantity int         `json:"stock_quantity"`
	CategoryID    int64       `json:"category_id"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     string      `json:"created_at"`
}

// decodeResult.skipped counts array elements that could not be decoded as
// cart lines.
type decodeResult struct {
	items   []domain.CartItem
	isArray bool
	skipped int
}

func encodeItems(items []domain.CartItem) (string, error) {
	stored := make([]storedItem, 0, len(items))
	for _, item := range items {
		stored = append(stored, mapCartItemToStored(item))
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}
	return string(data), nil
}

// decodeItems parses a persisted cart. Invalid JSON is an error; valid JSON
// that is not an array yields isArray=false. Elements that are not objects
// are skipped.
func decodeItems(payload string) (decodeResult, error) {
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return decodeResult{}, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if _, ok := raw.([]any); !ok {
		return decodeResult{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return decodeResult{}, fmt.Errorf("json.Unmarshal elements: %w", err)
	}

	result := decodeResult{isArray: true, items: make([]domain.CartItem, 0, len(elements))}
	for _, element := range elements {
		item, err := decodeItem(element)
		if err != nil {
			result.skipped++
			continue
		}
		result.items = append(result.items, item)
	}
	return result, nil
}

func decodeItem(element json.RawMessage) (domain.CartItem, error) {
	if string(bytes.TrimSpace(element)) == "null" {
		return domain.CartItem{}, fmt.Errorf("item is null")
	}

	var stored storedItem
	if err := json.Unmarshal(element, &stored); err != nil {
		return domain.CartItem{}, fmt.Errorf("json.Unmarshal item: %w", err)
	}

	price := decimal.Zero
	if stored.Price != "" {
		parsed, err := decimal.NewFromString(stored.Price.String())
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("price[%s] is not valid: %w", stored.Price, err)
		}
		price = parsed
	}

	return mapStoredToCartItem(stored, price), nil
}

func mapCartItemToStored(item domain.CartItem) storedItem {
	imageURLs := item.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return storedItem{
		ID:            item.ID,
		Name:          item.Name,
		Price:         json.Number(item.Price.String()),
		Quantity:      item.Quantity,
		ImageURL:      item.ImageURL,
		Weight:        item.Weight,
		Description:   item.Description,
		ImageURLs:     imageURLs,
		StockQuantity: item.StockQuantity,
		CategoryID:    item.CategoryID,
		IsActive:      item.IsActive,
		CreatedAt:     item.CreatedAt,
	}
}

func mapStoredToCartItem(stored storedItem, price decimal.Decimal) domain.CartItem {
	return domain.CartItem{
		Product: domain.Product{
			ID:            stored.ID,
			Name:          stored.Name,
			Description:   stored.Description,
			Price:         price,
			ImageURL:      stored.ImageURL,
			ImageURLs:     stored.ImageURLs,
			Weight:        stored.Weight,
			StockQuantity: stored.StockQuantity,
			CategoryID:    stored.CategoryID,
			IsActive:      stored.IsActive,
			CreatedAt:     stored.CreatedAt,
		},
		Quantity: stored.Quantity,
	}
}
