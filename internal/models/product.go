package models

// Product is the storefront's partial view of a backend product.
type Product struct {
	ID             string   `json:"_id"`
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	CompareAtPrice *float64 `json:"compareAtPrice,omitempty"`
	Image          string   `json:"image,omitempty"`
	Images         []string `json:"images,omitempty"`
	Stock          *int     `json:"stock,omitempty"`
	Category       Ref      `json:"category"`
	CategorySlug   string   `json:"categorySlug,omitempty"`
	Subcategory    Ref      `json:"subcategory"`
	Manufacturer   Ref      `json:"manufacturer"`
}

// Cover returns the image shown on product cards.
func (p Product) Cover() string {
	if len(p.Images) > 0 && p.Images[0] != "" {
		return p.Images[0]
	}
	return p.Image
}

// InStock reports whether the product can be added to the cart. A product
// without stock information is considered available.
func (p Product) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

// HasDiscount reports whether a higher compare-at price should be shown.
func (p Product) HasDiscount() bool {
	return p.CompareAtPrice != nil && *p.CompareAtPrice > p.Price
}

// CategoryKey is the category slug used to list related products.
func (p Product) CategoryKey() string {
	if p.CategorySlug != "" {
		return p.CategorySlug
	}
	return p.Category.Slug
}
