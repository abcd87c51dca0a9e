package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retailware/tillpoint-backend/api/controllers"
	"github.com/retailware/tillpoint-backend/api/middleware"
	"github.com/retailware/tillpoint-backend/internal/fiscal"
	"github.com/retailware/tillpoint-backend/internal/giftcards"
	"github.com/retailware/tillpoint-backend/internal/loyalty"
	"github.com/retailware/tillpoint-backend/internal/sales"
	"github.com/retailware/tillpoint-backend/internal/settlement"
	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/db"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	pkgredis "github.com/retailware/tillpoint-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *pkgredis.Client

	Settlement settlement.Service
	Sales      sales.Service
	GiftCards  giftcards.Service
	Loyalty    loyalty.Service
	Fiscal     fiscal.Service
}

// New assembles the API router.
func New(deps Deps) http.Handler {
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.CORS())
	r.Use(middleware.Logging(logg))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/cart/quote", controllers.CartQuote(deps.Settlement, logg))

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.SaleCheckout(deps.Settlement, logg))
			r.Get("/", controllers.SaleList(deps.Sales, logg))
			r.Route("/{saleId}", func(r chi.Router) {
				r.Get("/", controllers.SaleDetail(deps.Sales, logg))
				r.Post("/cancel", controllers.SaleCancel(deps.Sales, logg))
				r.Delete("/", controllers.SaleDelete(deps.Sales, logg))
				r.Post("/restore", controllers.SaleRestore(deps.Sales, logg))
				r.Post("/payments", controllers.SaleAddPayment(deps.Sales, logg))
			})
		})

		r.Route("/gift-cards", func(r chi.Router) {
			r.Post("/sell", controllers.GiftCardSell(deps.GiftCards, logg))
			r.Route("/{cardNumber}", func(r chi.Router) {
				r.Get("/", controllers.GiftCardLookup(deps.GiftCards, logg))
				r.Get("/transactions", controllers.GiftCardTransactions(deps.GiftCards, logg))
				r.Post("/configure", controllers.GiftCardConfigure(deps.GiftCards, logg))
			})

			// card administration requires a manager role
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCardAdmin(logg))
				r.Post("/", controllers.GiftCardRegister(deps.GiftCards, logg))
				r.Post("/{cardNumber}/deactivate", controllers.GiftCardDeactivate(deps.GiftCards, logg))
				r.Post("/{cardNumber}/reactivate", controllers.GiftCardReactivate(deps.GiftCards, logg))
			})
		})

		r.Route("/fiscal", func(r chi.Router) {
			r.Get("/status", controllers.FiscalStatus(deps.Fiscal, logg))
			r.Post("/shifts/open", controllers.FiscalShiftOpen(deps.Fiscal, logg))
			r.Post("/shifts/close", controllers.FiscalShiftClose(deps.Fiscal, logg))
		})

		r.Get("/customers/{customerId}/loyalty/transactions", controllers.LoyaltyHistory(deps.Loyalty, logg))
	})

	return r
}
