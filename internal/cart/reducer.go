package cart

import "github.com/nikolayk812/spicecart/internal/domain"

// Reduce applies action to state and returns the next state. It has no side
// effects and never modifies the items slice of state.
func Reduce(state domain.Cart, action Action) domain.Cart {
	switch a := action.(type) {
	case AddItem:
		return addItem(state, a.Product)
	case UpdateQuantity:
		if a.Quantity <= 0 {
			return removeItem(state, a.ID)
		}
		return setQuantity(state, a.ID, a.Quantity)
	case RemoveItem:
		return removeItem(state, a.ID)
	case ClearCart:
		return domain.Cart{Items: []domain.CartItem{}}
	case LoadCart:
		return domain.Cart{Items: a.Items}
	default:
		return state
	}
}

func addItem(state domain.Cart, product domain.Product) domain.Cart {
	if _, ok := state.Find(product.ID); ok {
		items := domain.CloneItems(state.Items)
		for i := range items {
			if items[i].ID == product.ID {
				items[i].Quantity++
			}
		}
		return domain.Cart{Items: items}
	}

	items := make([]domain.CartItem, 0, len(state.Items)+1)
	items = append(items, state.Items...)
	items = append(items, domain.CartItem{Product: product, Quantity: 1})
	return domain.Cart{Items: items}
}

func setQuantity(state domain.Cart, id int64, quantity int) domain.Cart {
	if _, ok := state.Find(id); !ok {
		return state
	}
	items := domain.CloneItems(state.Items)
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = quantity
		}
	}
	return domain.Cart{Items: items}
}

func removeItem(state domain.Cart, id int64) domain.Cart {
	if _, ok := state.Find(id); !ok {
		return state
	}
	items := make([]domain.CartItem, 0, len(state.Items)-1)
	for _, item := range state.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	return domain.Cart{Items: items}
}
