package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/pricing"
	"github.com/example/amarshop/internal/services"
)

// InvoiceHandler renders printable invoices of placed orders.
type InvoiceHandler struct {
	*Site
	reconciler *pricing.Reconciler
}

// NewInvoiceHandler constructs InvoiceHandler.
func NewInvoiceHandler(site *Site, reconciler *pricing.Reconciler) *InvoiceHandler {
	return &InvoiceHandler{Site: site, reconciler: reconciler}
}

// Show renders the invoice of the order named in the URL. Line prices are
// reconciled against current product records fetched for this page only.
func (h *InvoiceHandler) Show(c *fiber.Ctx) error {
	ctx := c.UserContext()
	orderID := c.Params("token")

	order, err := h.api.GetOrder(ctx, orderID)
	if services.IsNotFound(err) {
		return h.notFound(c, "The order you are looking for does not exist.")
	}
	if err != nil {
		return h.failure(c, "invoice", err, "Could not load order", fiber.Map{"Title": "Invoice"})
	}

	summary, err := h.reconciler.Order(ctx, *order, pricing.NewProductCache(h.api))
	if err != nil {
		return err
	}

	bind := fiber.Map{
		"Title":   "Invoice #" + order.ShortID(),
		"Summary": summary,
		"Order":   order,
		"Placed":  c.Query("placed") == "1",
	}

	invoices := services.NewInvoiceCache(h.api)
	if doc, err := invoices.Get(ctx, order.ID); err != nil {
		h.log.Warn("official invoice lookup failed", zap.String("order", order.ID), zap.Error(err))
	} else if doc != nil {
		bind["Official"] = doc
	}
	return h.render(c, "invoice", bind)
}
