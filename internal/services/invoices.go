package services

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/example/amarshop/internal/models"
)

// GetInvoiceByOrder returns the invoice issued for an order, or nil when the
// order has none yet.
func (c *Client) GetInvoiceByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := c.data(ctx, RequestOpts{Method: http.MethodGet, Path: "invoices/by-order/" + orderID}, &inv)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// InvoiceFetcher is the backend call behind an InvoiceCache.
type InvoiceFetcher interface {
	GetInvoiceByOrder(ctx context.Context, orderID string) (*models.Invoice, error)
}

// InvoiceCache remembers invoice lookups for the lifetime of one page.
// Missing invoices are cached as nil; failed lookups are not cached.
type InvoiceCache struct {
	fetcher InvoiceFetcher
	group   singleflight.Group

	mu      sync.Mutex
	entries map[string]*models.Invoice
}

// NewInvoiceCache creates an empty cache over fetcher.
func NewInvoiceCache(fetcher InvoiceFetcher) *InvoiceCache {
	return &InvoiceCache{fetcher: fetcher, entries: make(map[string]*models.Invoice)}
}

// Get returns the invoice of orderID, fetching it at most once.
func (c *InvoiceCache) Get(ctx context.Context, orderID string) (*models.Invoice, error) {
	c.mu.Lock()
	inv, ok := c.entries[orderID]
	c.mu.Unlock()
	if ok {
		return inv, nil
	}

	v, err, _ := c.group.Do(orderID, func() (any, error) {
		inv, err := c.fetcher.GetInvoiceByOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[orderID] = inv
		c.mu.Unlock()
		return inv, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Invoice), nil
}

// Known reports whether orderID has been looked up, and whether it has an
// invoice.
func (c *InvoiceCache) Known(orderID string) (known, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inv, ok := c.entries[orderID]
	return ok, inv != nil
}
