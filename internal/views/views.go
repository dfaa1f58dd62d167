// Package views holds the storefront's HTML templates.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/utils"
)

//go:embed layouts partials *.html
var files embed.FS

// New returns a template engine over the embedded views.
func New() *html.Engine {
	engine := html.NewFileSystem(http.FS(files), ".html")
	engine.AddFuncMap(map[string]interface{}{
		"price":      utils.FormatPrice,
		"statusText": models.StatusText,
		"cover":      models.Cover,
		"deref":      deref,
		"fieldErr":   fieldErr,
		"lineTotal":  lineTotal,
	})
	return engine
}

func lineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// fieldErr looks up a validation message. errs may be missing from the view
// data altogether.
func fieldErr(errs map[string]string, field string) string {
	return errs[field]
}
