package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsivak/soleplug-backend/api/controllers"
	"github.com/jsivak/soleplug-backend/api/middleware"
	"github.com/jsivak/soleplug-backend/internal/fees"
	"github.com/jsivak/soleplug-backend/internal/listings"
	"github.com/jsivak/soleplug-backend/internal/pricing"
	"github.com/jsivak/soleplug-backend/internal/products"
	"github.com/jsivak/soleplug-backend/internal/sales"
	"github.com/jsivak/soleplug-backend/pkg/config"
	"github.com/jsivak/soleplug-backend/pkg/db"
	"github.com/jsivak/soleplug-backend/pkg/enums"
	"github.com/jsivak/soleplug-backend/pkg/logger"
	"github.com/jsivak/soleplug-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Fees     fees.Service
	Pricing  pricing.Service
	Listings listings.Service
	Products products.Service
	Sales    sales.Service
	Metrics  http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ProductSearch(p.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(p.Products, logg))
			r.Get("/{productId}/sizes", controllers.ProductSizes(p.Products, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/listings", func(r chi.Router) {
			r.Post("/", controllers.CreateListing(p.Listings, logg))
			r.Get("/", controllers.MyListings(p.Listings, logg))
			r.Post("/price-check", controllers.PriceCheck(p.Pricing, logg))
			r.Get("/{listingId}", controllers.GetListing(p.Listings, logg))
			r.Patch("/{listingId}/price", controllers.UpdateListingPrice(p.Listings, logg))
			r.Delete("/{listingId}", controllers.DeleteListing(p.Listings, logg))
		})

		r.Route("/v1/sales", func(r chi.Router) {
			r.Get("/", controllers.MySales(p.Sales, logg))
			r.Get("/{saleId}", controllers.SaleDetail(p.Sales, logg))
			r.Get("/{saleId}/history", controllers.SaleHistory(p.Sales, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/v1/fees", func(r chi.Router) {
			r.Get("/", controllers.AdminFeesGet(p.Fees, logg))
			r.Put("/", controllers.AdminFeesUpdate(p.Fees, logg))
			r.Post("/clear-cache", controllers.AdminFeesClearCache(p.Fees, logg))
		})

		r.Route("/v1/listings", func(r chi.Router) {
			r.Get("/", controllers.AdminListings(p.Listings, logg))
			r.Post("/{listingId}/convert", controllers.AdminConvertListing(p.Sales, logg))
		})

		r.Route("/v1/sales", func(r chi.Router) {
			r.Get("/", controllers.AdminSales(p.Sales, logg))
			r.Patch("/{saleId}", controllers.AdminSaleTransition(p.Sales, logg))
		})
	})

	return r
}
