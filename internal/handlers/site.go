package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/middleware"
	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/pricing"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/session"
	"github.com/example/amarshop/internal/utils"
	"github.com/example/amarshop/internal/validation"
)

const layout = "layouts/main"

// Site bundles what every page handler needs.
type Site struct {
	api      *services.Client
	log      *zap.Logger
	validate *validatorv10.Validate
}

// NewSite constructs a Site.
func NewSite(api *services.Client, log *zap.Logger) *Site {
	if log == nil {
		log = zap.NewNop()
	}
	return &Site{api: api, log: log, validate: validation.New()}
}

// render fills the layout fields and renders view inside the main layout.
func (s *Site) render(c *fiber.Ctx, view string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if _, ok := bind["Title"]; !ok {
		bind["Title"] = "Amar Shop"
	}
	bind["Nav"] = s.nav(c.UserContext())
	bind["Path"] = c.Path()

	if store, ok := middleware.GetSession(c); ok {
		st := store.State()
		bind["Authed"] = st.IsAuthed()
		bind["User"] = st.User
		if items, err := store.Cart(c.UserContext()); err == nil {
			bind["CartCount"] = pricing.Cart(items, nil).Count
		}
	}
	return c.Render(view, bind, layout)
}

// nav loads the navigation categories. A failure leaves the menu empty.
func (s *Site) nav(ctx context.Context) []models.Category {
	cats, err := s.api.ListCategories(ctx)
	if err != nil {
		s.log.Warn("navigation categories unavailable", zap.Error(err))
		return []models.Category{}
	}
	return cats
}

// failure renders view with a page-local error message and a retry link.
func (s *Site) failure(c *fiber.Ctx, view string, err error, fallback string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	status := fiber.StatusBadGateway
	if services.IsNotFound(err) {
		status = fiber.StatusNotFound
	}
	s.log.Warn("page data unavailable",
		zap.String("path", c.Path()),
		zap.Error(err))

	bind["Error"] = services.Message(err, fallback)
	bind["Retry"] = c.OriginalURL()
	c.Status(status)
	return s.render(c, view, bind)
}

// notFound renders the shared not-found page.
func (s *Site) notFound(c *fiber.Ctx, message string) error {
	c.Status(fiber.StatusNotFound)
	return s.render(c, "not_found", fiber.Map{"Title": "Not Found", "Message": message})
}

// expired logs the visitor out after the backend rejected the token and
// sends them to the login page.
func (s *Site) expired(c *fiber.Ctx, st *session.Store) error {
	s.log.Info("backend rejected access token, logging out")
	if err := st.Logout(c.UserContext()); err != nil {
		s.log.Warn("logout did not clear storage", zap.Error(err))
	}
	return redirect(c, "/login?next="+c.Path())
}

// store returns the visitor session. Routes are always mounted behind the
// session middleware, so a missing store is a wiring error.
func store(c *fiber.Ctx) (*session.Store, error) {
	st, ok := middleware.GetSession(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "session missing")
	}
	return st, nil
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, http.StatusSeeOther)
}

// Pager holds the links of a paged listing.
type Pager struct {
	Page    int
	PrevURL string
	NextURL string
}

// pager builds previous and next links that keep the current filters.
func pager(c *fiber.Ctx, pg utils.Pagination, hasMore bool) Pager {
	link := func(page int) string {
		q := url.Values{}
		for k, v := range c.Queries() {
			q.Set(k, v)
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(pg.Limit))
		return c.Path() + "?" + q.Encode()
	}

	p := Pager{Page: pg.Page}
	if pg.Page > 1 {
		p.PrevURL = link(pg.Prev())
	}
	if hasMore {
		p.NextURL = link(pg.Next())
	}
	return p
}
