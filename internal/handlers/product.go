package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/utils"
)

const (
	productPageSize   = 12
	relatedFetchLimit = 12
	relatedShown      = 8
)

// ProductHandler serves product listings and detail pages.
type ProductHandler struct {
	*Site
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(site *Site) *ProductHandler {
	return &ProductHandler{Site: site}
}

// List shows one page of products filtered by the query string.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, productPageSize)
	q := services.ProductQuery{
		Brand:       c.Query("brand"),
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Search:      c.Query("search"),
		Page:        pg.Page,
		Limit:       pg.Limit,
	}

	bind := fiber.Map{
		"Title": "Products",
		"Query": q,
	}
	products, err := h.api.ListProducts(c.UserContext(), q)
	if err != nil {
		return h.failure(c, "products", err, "Could not load products", bind)
	}
	bind["Products"] = products
	bind["Pager"] = pager(c, pg, pg.HasMore(len(products)))
	return h.render(c, "products", bind)
}

// Show renders one product with related products from its category.
func (h *ProductHandler) Show(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := c.Params("slug")

	product, err := h.api.GetProduct(ctx, slug)
	if services.IsNotFound(err) {
		return h.notFound(c, "The product you are looking for does not exist.")
	}
	if err != nil {
		return h.failure(c, "product", err, "Could not load product", fiber.Map{"Title": "Product"})
	}

	return h.render(c, "product", fiber.Map{
		"Title":   product.Title,
		"Product": product,
		"Related": h.related(c, product),
	})
}

func (h *ProductHandler) related(c *fiber.Ctx, product *models.Product) []models.Product {
	category := product.CategoryKey()
	if category == "" {
		return nil
	}
	candidates, err := h.api.ListProducts(c.UserContext(), services.ProductQuery{Category: category, Limit: relatedFetchLimit})
	if err != nil {
		h.log.Debug("related products unavailable", zap.String("category", category), zap.Error(err))
		return nil
	}

	related := make([]models.Product, 0, relatedShown)
	for _, p := range candidates {
		if p.Slug == product.Slug {
			continue
		}
		related = append(related, p)
		if len(related) == relatedShown {
			break
		}
	}
	return related
}
