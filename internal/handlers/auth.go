package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/session"
	"github.com/example/amarshop/internal/validation"
)

// AuthHandler bundles the login, registration and logout pages.
type AuthHandler struct {
	*Site
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(site *Site) *AuthHandler {
	return &AuthHandler{Site: site}
}

// LoginForm renders the login page. Signed-in visitors are sent on.
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	next := safeNext(c.Query("next"))
	if st.IsAuthed() {
		return redirect(c, next)
	}
	return h.render(c, "login", fiber.Map{
		"Title":  "Sign In",
		"Next":   next,
		"Email":  "",
		"Notice": loginNotice(c.Query("reset")),
	})
}

// Login signs the visitor in with email and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	var form validation.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	bind := fiber.Map{"Title": "Sign In", "Next": safeNext(form.Next), "Email": form.Email}
	if errs := validation.Check(h.validate, form); errs != nil {
		bind["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "login", bind)
	}

	auth, err := h.api.Login(c.UserContext(), services.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		bind["Error"] = services.Message(err, "Login failed")
		c.Status(fiber.StatusUnauthorized)
		return h.render(c, "login", bind)
	}
	if err := h.signIn(c, st, auth); err != nil {
		return err
	}
	return redirect(c, safeNext(form.Next))
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	if st.IsAuthed() {
		return redirect(c, "/")
	}
	return h.render(c, "register", fiber.Map{"Title": "Create Account"})
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}

	var form validation.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	bind := fiber.Map{"Title": "Create Account", "Form": form}
	if errs := validation.Check(h.validate, form); errs != nil {
		bind["Errors"] = errs
		c.Status(fiber.StatusUnprocessableEntity)
		return h.render(c, "register", bind)
	}

	auth, err := h.api.Register(c.UserContext(), services.Registration{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Phone:    form.Phone,
	})
	if err != nil {
		bind["Error"] = services.Message(err, "Registration failed")
		c.Status(fiber.StatusBadRequest)
		return h.render(c, "register", bind)
	}
	if err := h.signIn(c, st, auth); err != nil {
		return err
	}
	return redirect(c, "/")
}

// Logout ends the session and returns to the home page.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	st, err := store(c)
	if err != nil {
		return err
	}
	if err := st.Logout(c.UserContext()); err != nil {
		h.log.Warn("logout did not clear storage", zap.Error(err))
	}
	return redirect(c, "/")
}

func (h *AuthHandler) signIn(c *fiber.Ctx, st *session.Store, auth *models.AuthPayload) error {
	if err := st.SetAuth(c.UserContext(), auth.Customer, auth.AccessToken, auth.RefreshToken); err != nil {
		h.log.Error("saving session failed", zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "could not save session")
	}
	h.log.Info("customer signed in", zap.String("customer", auth.Customer.ID))
	return nil
}

func loginNotice(reset string) string {
	if reset == "1" {
		return "Your password has been reset. Please sign in."
	}
	return ""
}
