package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/amarshop/internal/models"
)

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	return list[models.Category](ctx, c, RequestOpts{Method: http.MethodGet, Path: "categories"})
}

// ListManufacturers returns all manufacturers.
func (c *Client) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	return list[models.Manufacturer](ctx, c, RequestOpts{Method: http.MethodGet, Path: "manufacturers"})
}

// ListSubcategories returns the subcategories of a category.
func (c *Client) ListSubcategories(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	return list[models.Subcategory](ctx, c, RequestOpts{
		Method: http.MethodGet,
		Path:   "subcategories",
		Query:  url.Values{"categoryId": {categoryID}},
	})
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	Brand       string
	Category    string
	Subcategory string
	Search      string
	Page        int
	Limit       int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("brand", q.Brand)
	set("category", q.Category)
	set("subcategory", q.Subcategory)
	set("search", q.Search)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ListProducts returns one page of products.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	return list[models.Product](ctx, c, RequestOpts{
		Method: http.MethodGet,
		Path:   "products",
		Query:  q.values(),
	})
}

// GetProduct returns a product by id or slug.
func (c *Client) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	var p models.Product
	if err := c.data(ctx, RequestOpts{Method: http.MethodGet, Path: "products/" + idOrSlug}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
