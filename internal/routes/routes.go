package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/amarshop/internal/config"
	"github.com/example/amarshop/internal/handlers"
	"github.com/example/amarshop/internal/middleware"
	"github.com/example/amarshop/internal/pricing"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/session"
)

// Deps are the shared services the routes are built from.
type Deps struct {
	Config   *config.Config
	API      *services.Client
	Sessions session.Backend
	Logger   *zap.Logger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	site := handlers.NewSite(deps.API, log)
	catalogHandler := handlers.NewCatalogHandler(site)
	productHandler := handlers.NewProductHandler(site)
	cartHandler := handlers.NewCartHandler(site)
	checkoutHandler := handlers.NewCheckoutHandler(site)
	orderHandler := handlers.NewOrderHandler(site, services.NewInflight())
	invoiceHandler := handlers.NewInvoiceHandler(site, pricing.NewReconciler(log))
	authHandler := handlers.NewAuthHandler(site)
	passwordResetHandler := handlers.NewPasswordResetHandler(site)
	profileHandler := handlers.NewProfileHandler(site)

	// JSON helpers do not need a visitor session.
	api := app.Group("/api")
	api.Post("/delivery-charge", cartHandler.DeliveryCharge)

	app.Use(middleware.Session(deps.Config, deps.Sessions, log))

	// Catalog
	app.Get("/", catalogHandler.Home)
	app.Get("/categories", catalogHandler.Categories)
	app.Get("/subcategories", catalogHandler.Subcategories)
	app.Get("/manufacturers", catalogHandler.Manufacturers)
	app.Get("/manufacturer/:slug", catalogHandler.Manufacturer)

	// Products
	app.Get("/products", productHandler.List)
	app.Get("/products/:slug", productHandler.Show)

	// Cart and checkout
	cart := app.Group("/cart")
	cart.Get("/", cartHandler.Show)
	cart.Post("/add", cartHandler.Add)
	cart.Post("/update", cartHandler.Update)
	cart.Post("/remove", cartHandler.Remove)

	app.Get("/checkout", checkoutHandler.Form)
	app.Post("/checkout", checkoutHandler.Submit)

	// Orders and invoices
	app.Get("/orders", orderHandler.List)
	app.Get("/invoices/guest/:token", invoiceHandler.Show)

	// Auth
	app.Get("/login", authHandler.LoginForm)
	app.Post("/login", authHandler.Login)
	app.Get("/register", authHandler.RegisterForm)
	app.Post("/register", authHandler.Register)
	app.Get("/logout", authHandler.Logout)
	app.Post("/logout", authHandler.Logout)
	app.Get("/forgot-password", passwordResetHandler.ForgotForm)
	app.Post("/forgot-password", passwordResetHandler.Forgot)
	app.Get("/reset-password", passwordResetHandler.ResetForm)
	app.Post("/reset-password", passwordResetHandler.Reset)

	// Profile
	profile := app.Group("/profile", middleware.RequireAuth())
	profile.Get("/", profileHandler.Show)
	profile.Get("/edit", profileHandler.EditForm)
	profile.Post("/edit", profileHandler.Update)
}
