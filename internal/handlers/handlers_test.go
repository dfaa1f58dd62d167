package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/amarshop/internal/models"
)

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                    "/",
		"/orders":             "/orders",
		"/profile?tab=1":      "/profile?tab=1",
		"//evil.example.com":  "/",
		"/\\evil.example.com": "/",
		"https://example.com": "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestFilterOrders(t *testing.T) {
	orders := []models.Order{
		{ID: "aaa111", Status: models.StatusPending, Customer: models.CustomerInfo{Name: "Rahim"}},
		{ID: "bbb222", Status: models.StatusDelivered, Customer: models.CustomerInfo{Name: "Karim"}},
		{ID: "ccc333", Status: models.StatusDelivered, Customer: models.CustomerInfo{Name: "Salma"}},
	}

	assert.Len(t, filterOrders(orders, "", ""), 3)
	assert.Len(t, filterOrders(orders, "", models.StatusDelivered), 2)

	got := filterOrders(orders, "  KARIM ", "")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "bbb222", got[0].ID)
	}

	got = filterOrders(orders, "333", models.StatusDelivered)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "ccc333", got[0].ID)
	}
	assert.Empty(t, filterOrders(orders, "rahim", models.StatusDelivered))
}

func TestBrandFromSlug(t *testing.T) {
	assert.Equal(t, "fresh foods", brandFromSlug("fresh-foods"))
	assert.Equal(t, "pran rfl", brandFromSlug("pran%20rfl"))
}
