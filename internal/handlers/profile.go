package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/validation"
)

// ProfileHandler serves the signed-in customer's profile pages.
type ProfileHandler struct {
	*Site
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(site *Site) *ProfileHandler {
	return &ProfileHandler{Site: site}
}

// Show renders the profile.
func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	profile, err := h.api.GetProfile(c.UserContext(), st.State().Token)
	if services.IsUnauthorized(err) {
		return h.expired(c, st)
	}
	bind := fiber.Map{"Title": "My Profile", "Updated": c.Query("updated") == "1"}
	if err != nil {
		return h.failure(c, "profile", err, "Failed to load profile", bind)
	}
	bind["Profile"] = profile
	return h.render(c, "profile", bind)
}

// EditForm renders the profile form prefilled from the backend.
func (h *ProfileHandler) EditForm(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	profile, err := h.api.GetProfile(c.UserContext(), st.State().Token)
	if services.IsUnauthorized(err) {
		return h.expired(c, st)
	}
	bind := fiber.Map{"Title": "Edit Profile"}
	if err != nil {
		return h.failure(c, "profile_edit", err, "Failed to load profile", bind)
	}
	bind["Profile"] = profile
	return h.render(c, "profile_edit", bind)
}

// Update saves the profile form.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	var form validation.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	update := services.ProfileUpdate{
		Name:  form.Name,
		Phone: form.Phone,
		Address: models.ProfileAddress{
			HouseOrVillage:   form.HouseOrVillage,
			RoadOrPostOffice: form.RoadOrPostOffice,
			BlockOrThana:     form.BlockOrThana,
			District:         form.District,
		},
	}
	bind := fiber.Map{
		"Title":   "Edit Profile",
		"Profile": &models.Profile{Name: update.Name, Phone: update.Phone, Address: update.Address},
	}
	if errs := validation.Check(h.validate, form); errs != nil {
		bind["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "profile_edit", bind)
	}

	state := st.State()
	err = h.api.UpdateProfile(c.UserContext(), state.Token, update)
	if services.IsUnauthorized(err) {
		return h.expired(c, st)
	}
	if err != nil {
		bind["Error"] = services.Message(err, "Update failed")
		c.Status(fiber.StatusBadRequest)
		return h.render(c, "profile_edit", bind)
	}

	if state.User != nil {
		user := *state.User
		user.Name = update.Name
		user.Phone = update.Phone
		user.Address = models.CustomerInfo{
			HouseOrVillage:   update.Address.HouseOrVillage,
			RoadOrPostOffice: update.Address.RoadOrPostOffice,
			BlockOrThana:     update.Address.BlockOrThana,
			District:         update.Address.District,
		}.FullAddress()
		if err := st.SetUser(c.UserContext(), &user); err != nil {
			h.log.Warn("refreshing session user failed", zap.Error(err))
		}
	}
	return redirect(c, "/profile?updated=1")
}
