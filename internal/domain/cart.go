package domain

import (
	"github.com/shopspring/decimal"
)

// Product carries the catalog attributes a cart line is built from.
// Apart from ID and Price the cart treats them as opaque.
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	ImageURLs     []string
	Weight        string
	StockQuantity int
	CategoryID    int64
	IsActive      bool
	CreatedAt     string
}

type CartItem struct {
	Product

	Quantity int
}

// Subtotal is price times quantity for the line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	Items []CartItem
}

func (c Cart) Find(id int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// Total is recomputed on every call, it is never cached on the cart.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount sums quantities across all lines.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a cart whose item slice can be modified without affecting c.
func (c Cart) Clone() Cart {
	return Cart{Items: CloneItems(c.Items)}
}

func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
