package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/pricing"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/validation"
)

// CartHandler manages the visitor's cart.
type CartHandler struct {
	*Site
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(site *Site) *CartHandler {
	return &CartHandler{Site: site}
}

// Show renders the cart with its totals and the delivery quote.
func (h *CartHandler) Show(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	items, err := st.Cart(c.UserContext())
	if err != nil {
		return err
	}

	subtotal := pricing.Cart(items, nil).Subtotal
	totals := pricing.Cart(items, pricing.Delivery(c.UserContext(), h.api, subtotal, h.log))
	return h.render(c, "cart", fiber.Map{
		"Title":  "Cart",
		"Items":  items,
		"Totals": totals,
		"Notice": c.Query("notice"),
	})
}

// Add puts a product into the cart. Title and price are taken from the
// backend, not from the form.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	var form validation.CartForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if form.Quantity == 0 {
		form.Quantity = 1
	}
	if errs := validation.Check(h.validate, form); errs != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cart item")
	}

	product, err := h.api.GetProduct(c.UserContext(), form.ProductID)
	if err != nil {
		h.log.Warn("add to cart failed", zap.String("product", form.ProductID), zap.Error(err))
		return redirect(c, "/cart?notice=unavailable")
	}
	if !product.InStock() {
		return redirect(c, "/cart?notice=out-of-stock")
	}

	if err := st.AddToCart(c.UserContext(), models.CartItem{
		ProductID: product.ID,
		Slug:      product.Slug,
		Title:     product.Title,
		Image:     product.Cover(),
		Price:     product.Price,
		Quantity:  form.Quantity,
	}); err != nil {
		return err
	}
	return redirect(c, "/cart")
}

// Update changes the quantity of a cart line; zero removes it.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	var form validation.CartForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := validation.Check(h.validate, form); errs != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cart item")
	}
	if err := st.UpdateCartQuantity(c.UserContext(), form.ProductID, form.Quantity); err != nil {
		return err
	}
	return redirect(c, "/cart")
}

// Remove drops a line from the cart.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	productID := c.FormValue("productId")
	if productID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "productId is required")
	}
	if err := st.RemoveFromCart(c.UserContext(), productID); err != nil {
		return err
	}
	return redirect(c, "/cart")
}

type deliveryChargeRequest struct {
	CartAmount float64 `json:"cartAmount"`
}

// DeliveryCharge quotes the delivery charge of a cart amount as JSON. An
// empty cart has no quote; an unavailable backend quotes free delivery.
func (h *CartHandler) DeliveryCharge(c *fiber.Ctx) error {
	var req deliveryChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	info := pricing.Delivery(c.UserContext(), h.api, req.CartAmount, h.log)
	return c.JSON(fiber.Map{"ok": true, "data": info})
}

// cartOrderLines turns the cart into order lines.
func cartOrderLines(items []models.CartItem) []services.OrderLineRequest {
	lines := make([]services.OrderLineRequest, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		lines = append(lines, services.OrderLineRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Title:     it.Title,
			Image:     it.Image,
		})
	}
	return lines
}
