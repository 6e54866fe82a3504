package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kadapaimran/grocery-storefront/api/controllers"
	"github.com/kadapaimran/grocery-storefront/api/middleware"
	"github.com/kadapaimran/grocery-storefront/internal/admin"
	authsvc "github.com/kadapaimran/grocery-storefront/internal/auth"
	"github.com/kadapaimran/grocery-storefront/internal/cart"
	"github.com/kadapaimran/grocery-storefront/internal/catalog"
	checkoutsvc "github.com/kadapaimran/grocery-storefront/internal/checkout"
	"github.com/kadapaimran/grocery-storefront/internal/session"
	pkgauth "github.com/kadapaimran/grocery-storefront/pkg/auth"
	"github.com/kadapaimran/grocery-storefront/pkg/config"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/redis"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redis.Client
	Sessions       *session.Container
	AuthService    authsvc.Service
	CatalogService catalog.Service
	CartStore      *cart.Store
	Checkout       checkoutsvc.Service
	LegacyCheckout *checkoutsvc.LegacyService
	AdminPanel     *admin.Panel
	Metrics        http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
		r.Get("/category/{category}", controllers.ListProductsByCategory(deps.CatalogService, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(rateLimited(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.AuthService, logg))
		r.With(rateLimited(signupPolicy, deps.Redis, logg)).Post("/signup", controllers.Signup(deps.AuthService, logg))
		r.With(middleware.SessionGuard(deps.Sessions, "/login")).Post("/logout", controllers.Logout(deps.AuthService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionGuard(deps.Sessions, "/login"))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.CartStore, logg))
			r.Post("/items", controllers.AddCartItem(deps.CartStore, logg))
			r.Put("/items/{id}/quantity", controllers.UpdateCartItemQuantity(deps.CartStore, logg))
			r.Delete("/items/{id}", controllers.RemoveCartItem(deps.CartStore, logg))
			r.Delete("/", controllers.ClearCart(deps.CartStore, logg))
		})

		r.Get("/orders", controllers.ListOrders(deps.CartStore, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.SubmitCheckout(deps.Checkout, logg))
			r.Post("/validate-field", controllers.ValidateCheckoutField(logg))
		})

		r.Route("/payment", func(r chi.Router) {
			r.Get("/summary", controllers.GetOrderSummary(deps.LegacyCheckout, logg))
			r.Post("/", controllers.SubmitLegacyPayment(deps.LegacyCheckout, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(pkgauth.RoleAdmin, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.AdminPanel, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.AdminPanel, logg))
			r.Patch("/{id}", controllers.AdminUpdateProduct(deps.AdminPanel, logg))
			r.Delete("/{id}", controllers.AdminDeleteProduct(deps.AdminPanel, logg))
		})
	})

	return r
}

// rateLimited wires the auth throttle only when Redis is configured. The
// typed-nil check has to happen here, before the client crosses the
// interface boundary.
func rateLimited(policy middleware.AuthRateLimitPolicy, client *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, client, logg)
}
