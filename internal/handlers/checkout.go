package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/pricing"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/validation"
)

const paymentCOD = "COD"

// CheckoutHandler turns the cart into an order.
type CheckoutHandler struct {
	*Site
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(site *Site) *CheckoutHandler {
	return &CheckoutHandler{Site: site}
}

// Form renders the checkout form prefilled from the signed-in user or the
// saved guest profile.
func (h *CheckoutHandler) Form(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	items, err := st.Cart(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return redirect(c, "/cart")
	}

	var customer models.CustomerInfo
	if state := st.State(); state.IsAuthed() {
		customer = models.CustomerFromUser(*state.User)
	} else if guest, ok, err := st.GuestProfile(ctx); err != nil {
		h.log.Warn("guest profile unreadable", zap.Error(err))
	} else if ok {
		customer = guest
	}

	return h.render(c, "checkout", h.bind(c, items, customer, nil))
}

// Submit validates the form and places a cash-on-delivery order.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	items, err := st.Cart(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return redirect(c, "/cart")
	}

	var form validation.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	customer := models.CustomerInfo{
		Name:             form.Name,
		Phone:            form.Phone,
		Email:            form.Email,
		HouseOrVillage:   form.HouseOrVillage,
		RoadOrPostOffice: form.RoadOrPostOffice,
		BlockOrThana:     form.BlockOrThana,
		District:         form.District,
	}
	if errs := validation.Check(h.validate, form); errs != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "checkout", h.bind(c, items, customer, errs))
	}

	subtotal := pricing.Cart(items, nil).Subtotal
	totals := pricing.Cart(items, pricing.Delivery(ctx, h.api, subtotal, h.log))
	var shipping float64
	if totals.Delivery != nil {
		shipping = totals.Delivery.DeliveryCharge
	}

	state := st.State()
	order, err := h.api.CreateOrder(ctx, state.Token, services.CreateOrderRequest{
		Customer: customer,
		Lines:    cartOrderLines(items),
		Shipping: shipping,
		Payment:  models.Payment{Method: paymentCOD},
	})
	if err != nil {
		bind := h.bind(c, items, customer, nil)
		bind["Error"] = services.Message(err, "Could not place your order")
		c.Status(fiber.StatusBadGateway)
		return h.render(c, "checkout", bind)
	}

	h.log.Info("order placed",
		zap.String("order", order.ID),
		zap.Bool("guest", !state.IsAuthed()),
		zap.Int("lines", len(items)))

	if err := st.SaveGuestProfile(ctx, customer); err != nil {
		h.log.Warn("saving guest profile failed", zap.Error(err))
	}
	if err := st.ClearCart(ctx); err != nil {
		h.log.Warn("clearing cart failed", zap.Error(err))
	}
	return redirect(c, "/invoices/guest/"+order.ID+"?placed=1")
}

func (h *CheckoutHandler) bind(c *fiber.Ctx, items []models.CartItem, customer models.CustomerInfo, errs map[string]string) fiber.Map {
	subtotal := pricing.Cart(items, nil).Subtotal
	return fiber.Map{
		"Title":    "Checkout",
		"Items":    items,
		"Totals":   pricing.Cart(items, pricing.Delivery(c.UserContext(), h.api, subtotal, h.log)),
		"Customer": customer,
		"Errors":   errs,
	}
}
