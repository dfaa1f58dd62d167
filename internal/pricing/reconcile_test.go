package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/example/amarshop/internal/models"
)

func price(v float64) *float64 { return &v }

type stubLookup struct {
	mu       sync.Mutex
	products map[string]*models.Product
	fail     map[string]bool
	calls    map[string]int
}

func newStubLookup() *stubLookup {
	return &stubLookup{
		products: map[string]*models.Product{},
		fail:     map[string]bool{},
		calls:    map[string]int{},
	}
}

func (s *stubLookup) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	if s.fail[id] {
		return nil, errors.New("backend unavailable")
	}
	p, ok := s.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func TestLineUsesLivePrice(t *testing.T) {
	order := models.Order{Totals: models.OrderTotals{SubTotal: 999}}
	line := models.OrderLine{ProductID: "p1", Quantity: 3, Price: price(40)}

	got := Line(order, line, &models.Product{ID: "p1", Title: "Soap", Price: 55})
	assert.Equal(t, SourceLive, got.Source)
	assert.Equal(t, 55.0, got.UnitPrice)
	assert.Equal(t, 165.0, got.LineTotal)
	assert.Equal(t, "Soap", got.Title)
}

func TestLineFallsBackToEmbeddedPrice(t *testing.T) {
	order := models.Order{Totals: models.OrderTotals{SubTotal: 999}}
	line := models.OrderLine{ProductID: "p1", Quantity: 4, Price: price(12.5), Title: "Oil"}

	got := Line(order, line, nil)
	assert.Equal(t, SourceEmbedded, got.Source)
	assert.Equal(t, 12.5, got.UnitPrice)
	assert.Equal(t, 50.0, got.LineTotal)
	assert.Equal(t, "Oil", got.Title)

	zeroLive := &models.Product{ID: "p1", Price: 0}
	got = Line(order, line, zeroLive)
	assert.Equal(t, SourceEmbedded, got.Source, "a zero live price is not usable")
}

func TestLineSplitsSubtotal(t *testing.T) {
	order := models.Order{
		Totals: models.OrderTotals{SubTotal: 500},
		Lines: []models.OrderLine{
			{ProductID: "a", Quantity: 2},
			{ProductID: "b", Quantity: 3},
		},
	}

	first := Line(order, order.Lines[0], nil)
	second := Line(order, order.Lines[1], nil)

	assert.Equal(t, SourceSplit, first.Source)
	assert.Equal(t, 100.0, first.UnitPrice)
	assert.Equal(t, 100.0, second.UnitPrice)
	assert.Equal(t, 200.0, first.LineTotal)
	assert.Equal(t, 300.0, second.LineTotal)
	assert.Equal(t, 500.0, first.LineTotal+second.LineTotal)
	assert.Equal(t, "Product", first.Title)
}

func TestLineSplitWithinTolerance(t *testing.T) {
	order := models.Order{
		Totals: models.OrderTotals{SubTotal: 100},
		Lines: []models.OrderLine{
			{Quantity: 1},
			{Quantity: 2},
		},
	}
	var total float64
	for _, l := range order.Lines {
		total += Line(order, l, nil).LineTotal
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestLineWithoutAnyPrice(t *testing.T) {
	tests := []struct {
		name  string
		order models.Order
		line  models.OrderLine
	}{
		{
			name:  "no subtotal",
			order: models.Order{Lines: []models.OrderLine{{Quantity: 2}}},
			line:  models.OrderLine{Quantity: 2},
		},
		{
			name:  "no quantity",
			order: models.Order{Totals: models.OrderTotals{SubTotal: 10}, Lines: []models.OrderLine{{Quantity: 0}}},
			line:  models.OrderLine{Quantity: 0},
		},
		{
			name:  "negative embedded price",
			order: models.Order{Lines: []models.OrderLine{{Quantity: 1}}},
			line:  models.OrderLine{Quantity: 1, Price: price(-5)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(tt.order, tt.line, nil)
			assert.Equal(t, SourceNone, got.Source)
			assert.Zero(t, got.UnitPrice)
			assert.Zero(t, got.LineTotal)
		})
	}
}

func TestReconcilerOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	lookup := newStubLookup()
	lookup.products["live"] = &models.Product{ID: "live", Title: "Fresh", Price: 30, Images: []string{"/fresh.png"}}
	lookup.fail["down"] = true

	order := models.Order{
		ID:     "order-1",
		Totals: models.OrderTotals{SubTotal: 210, Shipping: 60, GrandTotal: 270},
		Lines: []models.OrderLine{
			{ProductID: "live", Quantity: 2, Price: price(25)},
			{ProductID: "down", Quantity: 1, Price: price(90)},
			{ProductID: "live", Quantity: 1},
			{Quantity: 3},
		},
	}

	cache := NewProductCache(lookup)
	sum, err := NewReconciler(nil).Order(context.Background(), order, cache)
	require.NoError(t, err)
	require.Len(t, sum.Lines, 4)

	assert.Equal(t, SourceLive, sum.Lines[0].Source)
	assert.Equal(t, 60.0, sum.Lines[0].LineTotal)
	assert.Equal(t, "/fresh.png", sum.Lines[0].Image)

	assert.Equal(t, SourceEmbedded, sum.Lines[1].Source)
	assert.Equal(t, 90.0, sum.Lines[1].LineTotal)

	assert.Equal(t, SourceLive, sum.Lines[2].Source)

	assert.Equal(t, SourceSplit, sum.Lines[3].Source)
	assert.Equal(t, 30.0, sum.Lines[3].UnitPrice)

	assert.Equal(t, 60.0, sum.Shipping)
	assert.Equal(t, 270.0, sum.GrandTotal)
	assert.Equal(t, 60.0+90+30+90, sum.LinesTotal)

	assert.Equal(t, 1, lookup.calls["live"], "product fetched once per view")
	assert.Equal(t, 1, lookup.calls["down"])

	_, err = NewReconciler(nil).Order(context.Background(), order, cache)
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.calls["live"], "cache reused within the same view")
	assert.Equal(t, 1, lookup.calls["down"], "misses are cached too")
}

func TestReconcilerWithoutCache(t *testing.T) {
	order := models.Order{
		Totals: models.OrderTotals{SubTotal: 500},
		Lines:  []models.OrderLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 3}},
	}
	sum, err := NewReconciler(nil).Order(context.Background(), order, nil)
	require.NoError(t, err)
	assert.Equal(t, 200.0, sum.Lines[0].LineTotal)
	assert.Equal(t, 300.0, sum.Lines[1].LineTotal)
	assert.Equal(t, 500.0, sum.LinesTotal)
}

type blockingLookup struct{}

func (blockingLookup) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestReconcilerCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	order := models.Order{Lines: []models.OrderLine{{ProductID: "a", Quantity: 1}}}
	_, err := NewReconciler(nil).Order(ctx, order, NewProductCache(blockingLookup{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "live", SourceLive.String())
	assert.Equal(t, "embedded", SourceEmbedded.String())
	assert.Equal(t, "split", SourceSplit.String())
	assert.Equal(t, "none", SourceNone.String())
}
