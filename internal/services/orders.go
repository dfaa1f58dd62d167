package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
)

// ListOrdersByPhone returns the orders placed with phone, newest first.
// Older backends only understand customerPhone=, which is tried when the
// phone= query is rejected.
func (c *Client) ListOrdersByPhone(ctx context.Context, phone string, limit int) ([]models.Order, error) {
	query := url.Values{"phone": {phone}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	orders, err := list[models.Order](ctx, c, RequestOpts{Method: http.MethodGet, Path: "orders", Query: query})
	var se *StatusError
	if errors.As(err, &se) {
		c.logger.Info("orders by phone rejected, retrying with customerPhone",
			zap.Int("status", se.Status))
		orders, err = list[models.Order](ctx, c, RequestOpts{
			Method: http.MethodGet,
			Path:   "orders",
			Query:  url.Values{"customerPhone": {phone}},
		})
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// GetOrder returns an order by id.
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := c.data(ctx, RequestOpts{Method: http.MethodGet, Path: "orders/" + id}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderLineRequest is one line of a new order.
type OrderLineRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price"`
	Title     string  `json:"title,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// CreateOrderRequest is posted to /orders by checkout.
type CreateOrderRequest struct {
	Customer models.CustomerInfo `json:"customer"`
	Lines    []OrderLineRequest  `json:"lines"`
	Shipping float64             `json:"shipping"`
	Payment  models.Payment      `json:"payment"`
}

// CreateOrder places an order. token is empty for guest checkout.
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*models.Order, error) {
	var o models.Order
	if err := c.data(ctx, RequestOpts{Method: http.MethodPost, Path: "orders", Body: req, Token: token}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// QuoteDelivery asks for the delivery charge of a cart amount.
func (c *Client) QuoteDelivery(ctx context.Context, cartAmount float64) (models.DeliveryInfo, error) {
	var info models.DeliveryInfo
	err := c.data(ctx, RequestOpts{
		Method: http.MethodPost,
		Path:   "delivery-charge",
		Body:   map[string]float64{"cartAmount": cartAmount},
	}, &info)
	return info, err
}
