package cart

import "github.com/nikolayk812/spicecart/internal/domain"

// Action is one of the closed set of cart transitions. Only this package can
// implement it.
type Action interface {
	actionName() string
}

// AddItem adds one unit of the product. Any quantity on the product is ignored.
type AddItem struct {
	Product domain.Product
}

// UpdateQuantity sets a line's quantity; a non-positive quantity removes it.
type UpdateQuantity struct {
	ID       int64
	Quantity int
}

type RemoveItem struct {
	ID int64
}

type ClearCart struct{}

// LoadCart replaces the whole cart with a persisted snapshot, unvalidated.
type LoadCart struct {
	Items []domain.CartItem
}

func (AddItem) actionName() string        { return "add_item" }
func (UpdateQuantity) actionName() string { return "update_quantity" }
func (RemoveItem) actionName() string     { return "remove_item" }
func (ClearCart) actionName() string      { return "clear_cart" }
func (LoadCart) actionName() string       { return "load_cart" }
