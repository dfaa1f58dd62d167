package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page and limit query params with sane defaults.
func ParsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	page := parseInt(c.Query("page", "1"), 1)
	limit := parseInt(c.Query("limit", strconv.Itoa(defaultLimit)), defaultLimit)
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{Page: page, Limit: limit}
}

// Next is the page after p.
func (p Pagination) Next() int {
	return p.Page + 1
}

// Prev is the page before p, never below 1.
func (p Pagination) Prev() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// HasMore reports whether a full page was returned, which means another
// page may follow.
func (p Pagination) HasMore(returned int) bool {
	return returned >= p.Limit
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
