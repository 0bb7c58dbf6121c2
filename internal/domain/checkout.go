package domain

import (
	"errors"
	"fmt"
	"golang.org/x/text/currency"
	"time"
)

var ErrEmptyCart = errors.New("cart is empty")

type CheckoutLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice Money
	Subtotal  Money
}

// CheckoutSnapshot freezes the cart contents at the moment an order is placed.
type CheckoutSnapshot struct {
	Lines      []CheckoutLine
	Total      Money
	CapturedAt time.Time
}

type StockShortage struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (s StockShortage) Error() string {
	return fmt.Sprintf("insufficient stock for %s. available: %d, requested: %d", s.Name, s.Available, s.Requested)
}

func (c Cart) Checkout(unit currency.Unit, now time.Time) (CheckoutSnapshot, error) {
	if c.IsEmpty() {
		return CheckoutSnapshot{}, ErrEmptyCart
	}

	lines := make([]CheckoutLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, CheckoutLine{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: NewMoney(item.Price, unit),
			Subtotal:  NewMoney(item.Subtotal(), unit),
		})
	}

	return CheckoutSnapshot{
		Lines:      lines,
		Total:      NewMoney(c.Total(), unit),
		CapturedAt: now,
	}, nil
}

// Shortages lists lines requesting more than the stock the product carried
// when it was added. A carried stock of zero means the figure was never
// supplied, so such lines are left to the backend's live check.
func (c Cart) Shortages() []StockShortage {
	var out []StockShortage
	for _, item := range c.Items {
		if item.StockQuantity <= 0 {
			continue
		}
		if item.Quantity > item.StockQuantity {
			out = append(out, StockShortage{
				ProductID: item.ID,
				Name:      item.Name,
				Available: item.StockQuantity,
				Requested: item.Quantity,
			})
		}
	}
	return out
}
