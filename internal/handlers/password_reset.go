package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/validation"
)

const forgotPasswordSent = "If an account exists for that email, a reset link is on its way."

// PasswordResetHandler manages the forgot-password pages.
type PasswordResetHandler struct {
	*Site
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(site *Site) *PasswordResetHandler {
	return &PasswordResetHandler{Site: site}
}

// ForgotForm renders the email form.
func (h *PasswordResetHandler) ForgotForm(c *fiber.Ctx) error {
	return h.render(c, "forgot_password", fiber.Map{"Title": "Forgot Password", "Email": ""})
}

// Forgot asks the backend to send a reset link.
func (h *PasswordResetHandler) Forgot(c *fiber.Ctx) error {
	var form validation.ForgotPasswordForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	bind := fiber.Map{"Title": "Forgot Password", "Email": form.Email}
	if errs := validation.Check(h.validate, form); errs != nil {
		bind["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "forgot_password", bind)
	}

	msg, err := h.api.ForgotPassword(c.UserContext(), form.Email)
	if err != nil {
		bind["Error"] = services.Message(err, "Could not send reset link")
		c.Status(fiber.StatusBadGateway)
		return h.render(c, "forgot_password", bind)
	}
	if msg == "" {
		msg = forgotPasswordSent
	}
	bind["Sent"] = msg
	return h.render(c, "forgot_password", bind)
}

// ResetForm renders the new-password form for the token in the link.
func (h *PasswordResetHandler) ResetForm(c *fiber.Ctx) error {
	token := c.Query("token")
	bind := fiber.Map{"Title": "Reset Password", "Token": token}
	if token == "" {
		bind["Error"] = "Invalid reset token"
		c.Status(fiber.StatusBadRequest)
	}
	return h.render(c, "reset_password", bind)
}

// Reset sets the new password and sends the visitor to the login page.
func (h *PasswordResetHandler) Reset(c *fiber.Ctx) error {
	var form validation.ResetPasswordForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	bind := fiber.Map{"Title": "Reset Password", "Token": form.Token}
	if errs := validation.Check(h.validate, form); errs != nil {
		if _, ok := errs["Token"]; ok {
			bind["Error"] = "Invalid reset token"
		}
		bind["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "reset_password", bind)
	}

	if _, err := h.api.ResetPassword(c.UserContext(), form.Token, form.Password); err != nil {
		bind["Error"] = services.Message(err, "Could not reset password")
		c.Status(fiber.StatusBadRequest)
		return h.render(c, "reset_password", bind)
	}
	return redirect(c, "/login?reset=1")
}
