package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/utils"
)

const (
	manufacturerPageSize = 8
	homeProductCount     = 12
)

// CatalogHandler serves the home page and the navigation listings.
type CatalogHandler struct {
	*Site
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(site *Site) *CatalogHandler {
	return &CatalogHandler{Site: site}
}

// Home shows categories, manufacturers and the latest products. Each section
// fails on its own.
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		categories    []models.Category
		manufacturers []models.Manufacturer
		products      []models.Product
		catErr        error
		mfrErr        error
		prodErr       error
	)

	var g errgroup.Group
	g.Go(func() error {
		categories, catErr = h.api.ListCategories(ctx)
		return nil
	})
	g.Go(func() error {
		manufacturers, mfrErr = h.api.ListManufacturers(ctx)
		return nil
	})
	g.Go(func() error {
		products, prodErr = h.api.ListProducts(ctx, services.ProductQuery{Limit: homeProductCount})
		return nil
	})
	_ = g.Wait()

	bind := fiber.Map{
		"Categories":    categories,
		"Manufacturers": manufacturers,
		"Products":      products,
	}
	if catErr != nil {
		bind["CategoriesError"] = services.Message(catErr, "Could not load categories")
	}
	if mfrErr != nil {
		bind["ManufacturersError"] = services.Message(mfrErr, "Could not load manufacturers")
	}
	if prodErr != nil {
		bind["ProductsError"] = services.Message(prodErr, "Could not load products")
	}
	if catErr != nil || mfrErr != nil || prodErr != nil {
		h.log.Warn("home page partially unavailable",
			zap.NamedError("categories", catErr),
			zap.NamedError("manufacturers", mfrErr),
			zap.NamedError("products", prodErr))
		bind["Retry"] = c.OriginalURL()
	}
	return h.render(c, "home", bind)
}

// Categories lists every category.
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	bind := fiber.Map{"Title": "Categories"}
	categories, err := h.api.ListCategories(c.UserContext())
	if err != nil {
		return h.failure(c, "categories", err, "Could not load categories", bind)
	}
	bind["Categories"] = categories
	return h.render(c, "categories", bind)
}

// Subcategories lists the subcategories of ?category=.
func (h *CatalogHandler) Subcategories(c *fiber.Ctx) error {
	categoryID := c.Query("category")
	if categoryID == "" {
		return redirect(c, "/categories")
	}

	bind := fiber.Map{"Title": "Subcategories", "CategoryID": categoryID}
	subcategories, err := h.api.ListSubcategories(c.UserContext(), categoryID)
	if err != nil {
		return h.failure(c, "subcategories", err, "Could not load subcategories", bind)
	}
	bind["Subcategories"] = subcategories
	return h.render(c, "subcategories", bind)
}

// Manufacturers lists every manufacturer.
func (h *CatalogHandler) Manufacturers(c *fiber.Ctx) error {
	bind := fiber.Map{"Title": "Manufacturers"}
	manufacturers, err := h.api.ListManufacturers(c.UserContext())
	if err != nil {
		return h.failure(c, "manufacturers", err, "Could not load manufacturers", bind)
	}
	bind["Manufacturers"] = manufacturers
	return h.render(c, "manufacturers", bind)
}

// Manufacturer pages through the products of one brand.
func (h *CatalogHandler) Manufacturer(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := c.Params("slug")
	pg := utils.ParsePagination(c, manufacturerPageSize)

	brand := brandFromSlug(slug)
	if manufacturers, err := h.api.ListManufacturers(ctx); err == nil {
		for _, m := range manufacturers {
			if m.Slug == slug && m.Name != "" {
				brand = m.Name
				break
			}
		}
	} else {
		h.log.Warn("manufacturer lookup failed, using slug as brand", zap.String("slug", slug), zap.Error(err))
	}

	bind := fiber.Map{
		"Title": brand,
		"Brand": brand,
		"Slug":  slug,
	}
	products, err := h.api.ListProducts(ctx, services.ProductQuery{Brand: brand, Page: pg.Page, Limit: pg.Limit})
	if err != nil {
		return h.failure(c, "manufacturer", err, "Could not load products", bind)
	}
	bind["Products"] = products
	bind["Pager"] = pager(c, pg, pg.HasMore(len(products)))
	return h.render(c, "manufacturer", bind)
}

func brandFromSlug(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	return strings.ReplaceAll(slug, "-", " ")
}
