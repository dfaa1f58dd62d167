// Package pricing derives the prices shown on order and invoice pages.
package pricing

import (
	"context"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/amarshop/internal/models"
)

// Source tells where a line's unit price came from.
type Source int

const (
	SourceNone Source = iota
	SourceLive
	SourceEmbedded
	SourceSplit
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceEmbedded:
		return "embedded"
	case SourceSplit:
		return "split"
	default:
		return "none"
	}
}

// LinePrice is the display price of one order line.
type LinePrice struct {
	Line      models.OrderLine
	Title     string
	Image     string
	UnitPrice float64
	LineTotal float64
	Source    Source
}

// Summary is a fully reconciled order.
type Summary struct {
	Order      models.Order
	Lines      []LinePrice
	LinesTotal float64
	SubTotal   float64
	Shipping   float64
	GrandTotal float64
}

// Line resolves the unit price of line within order. live is the current
// product record, or nil when it is unknown or could not be fetched.
//
// The unit price is the first finite positive value of: the live product
// price, the price embedded in the line, and the order subtotal split evenly
// over the total quantity of all lines. Without any of them it is 0. The
// split is a display approximation only.
func Line(order models.Order, line models.OrderLine, live *models.Product) LinePrice {
	lp := LinePrice{Line: line, Title: line.Title, Image: line.Image}
	if live != nil {
		if live.Title != "" {
			lp.Title = live.Title
		}
		if img := live.Cover(); img != "" {
			lp.Image = img
		}
	}
	if lp.Title == "" {
		lp.Title = "Product"
	}

	var unit decimal.Decimal
	switch {
	case live != nil && usable(live.Price):
		unit, lp.Source = decimal.NewFromFloat(live.Price), SourceLive
	case line.Price != nil && usable(*line.Price):
		unit, lp.Source = decimal.NewFromFloat(*line.Price), SourceEmbedded
	default:
		if split, ok := splitPrice(order); ok {
			unit, lp.Source = split, SourceSplit
		}
	}

	qty := int64(0)
	if line.Quantity > 0 {
		qty = int64(line.Quantity)
	}
	lp.UnitPrice = unit.InexactFloat64()
	lp.LineTotal = unit.Mul(decimal.NewFromInt(qty)).InexactFloat64()
	return lp
}

// TotalQuantity sums the positive quantities of the order's lines.
func TotalQuantity(order models.Order) int64 {
	var total int64
	for _, l := range order.Lines {
		if l.Quantity > 0 {
			total += int64(l.Quantity)
		}
	}
	return total
}

func splitPrice(order models.Order) (decimal.Decimal, bool) {
	qty := TotalQuantity(order)
	if qty == 0 || !usable(order.Totals.SubTotal) {
		return decimal.Zero, false
	}
	unit := decimal.NewFromFloat(order.Totals.SubTotal).Div(decimal.NewFromInt(qty))
	if !unit.IsPositive() {
		return decimal.Zero, false
	}
	return unit, true
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ProductLookup fetches the current record of a product by id.
type ProductLookup interface {
	GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error)
}

// ProductCache memoizes product lookups for the lifetime of one page view.
// Failed lookups are cached as misses so a page asks at most once per id.
type ProductCache struct {
	lookup ProductLookup

	mu       sync.Mutex
	products map[string]*models.Product
}

// NewProductCache wraps lookup with a per-view cache.
func NewProductCache(lookup ProductLookup) *ProductCache {
	return &ProductCache{lookup: lookup, products: map[string]*models.Product{}}
}

// Get returns the cached product, fetching it on first use. It returns nil
// when the product is unavailable.
func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	c.mu.Lock()
	p, ok := c.products[id]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	p, err := c.lookup.GetProduct(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p = nil
	}

	c.mu.Lock()
	c.products[id] = p
	c.mu.Unlock()
	return p, err
}

// Reconciler prices whole orders, looking up live product prices.
type Reconciler struct {
	logger      *zap.Logger
	concurrency int
}

// NewReconciler builds a Reconciler.
func NewReconciler(logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{logger: logger, concurrency: 4}
}

// Order reconciles every line of order. Products are fetched through cache;
// a failed lookup only downgrades that line to the next price source. The
// only error returned is the cancellation of ctx.
func (r *Reconciler) Order(ctx context.Context, order models.Order, cache *ProductCache) (Summary, error) {
	live := map[string]*models.Product{}
	if cache != nil {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		seen := map[string]bool{}
		for _, line := range order.Lines {
			id := line.ProductID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true

			g.Go(func() error {
				p, err := cache.Get(gctx, id)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.logger.Debug("live price unavailable",
						zap.String("order", order.ID),
						zap.String("product", id),
						zap.Error(err))
					return nil
				}
				mu.Lock()
				live[id] = p
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Summary{}, err
		}
	}

	sum := Summary{
		Order:      order,
		Lines:      make([]LinePrice, 0, len(order.Lines)),
		SubTotal:   order.Totals.SubTotal,
		Shipping:   order.Totals.Shipping,
		GrandTotal: order.Totals.GrandTotal,
	}
	total := decimal.Zero
	for _, line := range order.Lines {
		lp := Line(order, line, live[line.ProductID])
		sum.Lines = append(sum.Lines, lp)
		total = total.Add(decimal.NewFromFloat(lp.LineTotal))
	}
	sum.LinesTotal = total.InexactFloat64()
	return sum, nil
}
