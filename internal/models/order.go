package models

import (
	"encoding/json"
	"time"
)

// Order statuses reported by the backend.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusInShipping = "IN_SHIPPING"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
	StatusReturned   = "RETURNED"
)

// OrderStatuses lists the statuses shoppers can filter by.
var OrderStatuses = []string{
	StatusPending,
	StatusInProgress,
	StatusInShipping,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

// Order is a read-only snapshot of a placed order.
type Order struct {
	ID        string       `json:"_id"`
	CreatedAt time.Time    `json:"createdAt"`
	Status    string       `json:"status"`
	Customer  CustomerInfo `json:"customer"`
	Lines     []OrderLine  `json:"lines"`
	Totals    OrderTotals  `json:"totals"`
	Payment   Payment      `json:"payment"`
}

// ShortID is the order reference printed on invoices.
func (o Order) ShortID() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[len(o.ID)-8:]
}

// StatusText maps a backend status onto the label shown to shoppers.
func StatusText(status string) string {
	switch status {
	case StatusDelivered:
		return "Completed"
	case StatusCancelled:
		return "Rejected"
	case StatusInShipping:
		return "Partial Delivered"
	case StatusInProgress:
		return "Processing"
	default:
		return status
	}
}

// OrderTotals are the amounts computed by the backend at checkout.
type OrderTotals struct {
	SubTotal   float64 `json:"subTotal"`
	Shipping   float64 `json:"shipping"`
	GrandTotal float64 `json:"grandTotal"`
}

// Payment is the payment snapshot attached to an order.
type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// OrderLine references a product and may carry data captured at order time.
type OrderLine struct {
	ID        string   `json:"_id,omitempty"`
	ProductID string   `json:"productId,omitempty"`
	Quantity  int      `json:"qty"`
	Price     *float64 `json:"price,omitempty"`
	Title     string   `json:"title,omitempty"`
	Image     string   `json:"image,omitempty"`
}

// UnmarshalJSON accepts both "qty" and "quantity", and "name" as a title.
func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string   `json:"_id"`
		ProductID string   `json:"productId"`
		Qty       *int     `json:"qty"`
		Quantity  *int     `json:"quantity"`
		Price     *float64 `json:"price"`
		Title     string   `json:"title"`
		Name      string   `json:"name"`
		Image     string   `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = OrderLine{
		ID:        raw.ID,
		ProductID: raw.ProductID,
		Price:     raw.Price,
		Title:     raw.Title,
		Image:     raw.Image,
	}
	switch {
	case raw.Qty != nil:
		l.Quantity = *raw.Qty
	case raw.Quantity != nil:
		l.Quantity = *raw.Quantity
	}
	if l.Title == "" {
		l.Title = raw.Name
	}
	return nil
}
