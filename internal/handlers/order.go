package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/middleware"
	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/validation"
)

const (
	orderFetchLimit = 50

	// statusClientClosedRequest answers a request superseded by a newer one
	// from the same visitor.
	statusClientClosedRequest = 499
)

// OrderHandler lists the visitor's orders by phone number.
type OrderHandler struct {
	*Site
	inflight *services.Inflight
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(site *Site, inflight *services.Inflight) *OrderHandler {
	if inflight == nil {
		inflight = services.NewInflight()
	}
	return &OrderHandler{Site: site, inflight: inflight}
}

// List renders the orders placed with the visitor's phone. Signed-in users
// use the phone on their backend profile, which is resolved before the
// orders are fetched; guests use the phone saved at checkout or the one they
// submit with ?phone=.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	bind := fiber.Map{
		"Title":      "My Orders",
		"Search":     c.Query("q"),
		"Status":     c.Query("status"),
		"Statuses":   models.OrderStatuses,
		"PhoneInput": "",
	}

	phone := ""
	if state := st.State(); state.IsAuthed() {
		profile, err := h.api.GetProfile(ctx, state.Token)
		switch {
		case services.IsUnauthorized(err):
			return h.expired(c, st)
		case err != nil:
			h.log.Warn("profile unavailable, using cached phone", zap.Error(err))
			phone = state.User.Phone
		case profile != nil && profile.Phone != "":
			phone = profile.Phone
			if err := st.SetPhone(ctx, phone); err != nil {
				h.log.Warn("saving profile phone failed", zap.Error(err))
			}
		default:
			phone = state.User.Phone
		}
	}
	if submitted := strings.TrimSpace(c.Query("phone")); submitted != "" && !st.IsAuthed() {
		if errs := validation.Check(h.validate, validation.PhoneForm{Phone: submitted}); errs != nil {
			bind["PhoneError"] = errs["Phone"]
			bind["PhoneInput"] = submitted
			c.Status(fiber.StatusUnprocessableEntity)
			return h.render(c, "orders", bind)
		}
		if err := st.SetPhone(ctx, submitted); err != nil {
			return err
		}
		phone = submitted
	}
	if phone == "" {
		if phone, err = st.Phone(ctx); err != nil {
			return err
		}
	}
	bind["Phone"] = phone
	if phone == "" {
		return h.render(c, "orders", bind)
	}

	reqCtx, done := h.inflight.Begin(ctx, middleware.GetSessionID(c))
	defer done()

	orders, err := h.api.ListOrdersByPhone(reqCtx, phone, orderFetchLimit)
	if services.IsCanceled(err) {
		h.log.Debug("orders request superseded", zap.String("phone", phone))
		return c.SendStatus(statusClientClosedRequest)
	}
	if err != nil {
		return h.failure(c, "orders", err, "Failed to load orders", bind)
	}

	filtered := filterOrders(orders, c.Query("q"), c.Query("status"))
	bind["Orders"] = filtered
	bind["Total"] = len(orders)
	bind["Shown"] = len(filtered)
	return h.render(c, "orders", bind)
}

// filterOrders keeps orders whose id or customer name contains search and
// whose status equals status. Empty filters match everything.
func filterOrders(orders []models.Order, search, status string) []models.Order {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ID), search) &&
			!strings.Contains(strings.ToLower(o.Customer.Name), search) {
			continue
		}
		out = append(out, o)
	}
	return out
}
