package middleware

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/config"
	"github.com/example/amarshop/internal/session"
	"github.com/example/amarshop/internal/utils"
)

const (
	sessionContextKey   = "visitorSession"
	sessionIDContextKey = "visitorSessionID"
)

// Session loads the visitor session named by the session cookie, creating a
// new one when the cookie is missing, and hydrates it. A session whose access
// token has expired is logged out before the handler runs.
func Session(cfg *config.Config, backend session.Backend, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cfg.SessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookie,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(cfg.SessionTTL),
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		store := session.NewStore(backend.Open(id), log)
		if err := store.Hydrate(c.UserContext()); err != nil {
			log.Error("session hydrate failed", zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "session unavailable")
		}

		if st := store.State(); st.IsAuthed() && utils.TokenExpired(st.Token, time.Now()) {
			log.Info("access token expired, logging out")
			if err := store.Logout(c.UserContext()); err != nil {
				log.Warn("logout after expiry failed", zap.Error(err))
			}
		}

		c.Locals(sessionContextKey, store)
		c.Locals(sessionIDContextKey, id)
		return c.Next()
	}
}

// RequireAuth redirects anonymous visitors to the login page and brings them
// back afterwards.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ok := GetSession(c)
		if !ok || !store.IsAuthed() {
			return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// GetSession extracts the visitor session from context.
func GetSession(c *fiber.Ctx) (*session.Store, bool) {
	store, ok := c.Locals(sessionContextKey).(*session.Store)
	return store, ok && store != nil
}

// GetSessionID returns the id of the visitor session.
func GetSessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionIDContextKey).(string)
	return id
}
