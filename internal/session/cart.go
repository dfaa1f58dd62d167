package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/amarshop/internal/models"
)

// MaxCartQuantity caps the quantity of one cart line.
const MaxCartQuantity = 99

// Cart returns the items in the cart. A corrupt cart reads as empty.
func (s *Store) Cart(ctx context.Context) ([]models.CartItem, error) {
	raw, _, err := s.storage.Get(ctx, KeyCart)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	return s.decodeCart(raw), nil
}

func (s *Store) decodeCart(raw string) []models.CartItem {
	if raw == "" {
		return []models.CartItem{}
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding malformed cart")
		return []models.CartItem{}
	}
	return items
}

// updateCart applies fn to the stored cart as one storage update, so
// concurrent requests of the same visitor never lose each other's changes.
func (s *Store) updateCart(ctx context.Context, fn func([]models.CartItem) []models.CartItem) error {
	err := s.storage.Update(ctx, KeyCart, func(old string, _ bool) (string, error) {
		items := fn(s.decodeCart(old))
		if len(items) == 0 {
			return "", nil
		}
		b, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("encode cart: %w", err)
		}
		return string(b), nil
	})
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	return nil
}

// AddToCart adds item, merging quantities with an existing line of the same
// product. A merged line never exceeds MaxCartQuantity.
func (s *Store) AddToCart(ctx context.Context, item models.CartItem) error {
	if item.ProductID == "" || item.Quantity <= 0 {
		return fmt.Errorf("invalid cart item %q", item.ProductID)
	}
	item.Quantity = min(item.Quantity, MaxCartQuantity)

	return s.updateCart(ctx, func(items []models.CartItem) []models.CartItem {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Quantity = min(items[i].Quantity+item.Quantity, MaxCartQuantity)
				items[i].Price = item.Price
				return items
			}
		}
		return append(items, item)
	})
}

// UpdateCartQuantity sets the quantity of a product; zero or less removes it.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	return s.updateCart(ctx, func(items []models.CartItem) []models.CartItem {
		out := items[:0]
		for _, it := range items {
			if it.ProductID == productID {
				if quantity <= 0 {
					continue
				}
				it.Quantity = min(quantity, MaxCartQuantity)
			}
			out = append(out, it)
		}
		return out
	})
}

// RemoveFromCart drops a product from the cart.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.UpdateCartQuantity(ctx, productID, 0)
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) error {
	if err := s.storage.Apply(ctx, nil, []string{KeyCart}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
