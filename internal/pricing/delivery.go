package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
)

// DeliveryQuoter asks the backend for the delivery charge of a cart amount.
type DeliveryQuoter interface {
	QuoteDelivery(ctx context.Context, cartAmount float64) (models.DeliveryInfo, error)
}

// Delivery returns the delivery quote for subtotal. There is no quote for an
// empty cart. Any failure falls back to free delivery so checkout is never
// blocked by the quote.
func Delivery(ctx context.Context, q DeliveryQuoter, subtotal float64, logger *zap.Logger) *models.DeliveryInfo {
	if subtotal <= 0 {
		return nil
	}
	info, err := q.QuoteDelivery(ctx, subtotal)
	if err != nil {
		if logger != nil {
			logger.Warn("delivery charge unavailable, using free delivery",
				zap.Float64("subtotal", subtotal), zap.Error(err))
		}
		free := models.FreeDelivery
		return &free
	}
	if info.IsFree {
		info.DeliveryCharge = 0
	}
	return &info
}

// CartTotals are the amounts shown on the cart and checkout pages.
type CartTotals struct {
	Count    int
	Subtotal float64
	Delivery *models.DeliveryInfo
	Total    float64
}

// Cart sums items and adds the delivery charge when one is known.
func Cart(items []models.CartItem, delivery *models.DeliveryInfo) CartTotals {
	var (
		count    int
		subtotal = decimal.Zero
	)
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		count += it.Quantity
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	total := subtotal
	if delivery != nil {
		total = total.Add(decimal.NewFromFloat(delivery.DeliveryCharge))
	}
	return CartTotals{
		Count:    count,
		Subtotal: subtotal.InexactFloat64(),
		Delivery: delivery,
		Total:    total.InexactFloat64(),
	}
}
