package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	usersvc "storefront/internal/service/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type userService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

type cartService interface {
	View(ctx context.Context, userID int64) (*cartsvc.View, error)
	Add(ctx context.Context, userID, optionID int64, quantity int) (domain.CartLine, bool, error)
	Update(ctx context.Context, userID, cartID int64, quantity int) error
	Remove(ctx context.Context, userID, cartID int64) error
}

type orderService interface {
	History(ctx context.Context, userID int64) ([]domain.Order, error)
}

type checkoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Receipt, error)
}

type productService interface {
	PatchVariant(ctx context.Context, variantID int64, patch productrepo.VariantPatch) (*domain.ProductVariant, error)
	Popular(ctx context.Context, limit int) ([]productsvc.PopularItem, error)
}

type reviewService interface {
	Create(ctx context.Context, r domain.Review) (int64, error)
	List(ctx context.Context, productID int64) (*reviewsvc.Summary, error)
}

// idempotencyStore is satisfied by *idempotency.RedisStore.
type idempotencyStore interface {
	Claim(ctx context.Context, scope, key, fingerprint string) ([]byte, error)
	Complete(ctx context.Context, scope, key, fingerprint string, response []byte) error
	Release(ctx context.Context, scope, key string) error
	LockTTL() time.Duration
}

// Deps holds the services the router dispatches to. Idempotency, Metrics and
// Gatherer are optional.
type Deps struct {
	UserSvc     userService
	CartSvc     cartService
	OrderSvc    orderService
	CheckoutSvc checkoutService
	ProductSvc  productService
	ReviewSvc   reviewService

	Idempotency idempotencyStore
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer

	CORSOrigins []string
	// Development exposes internal error details in 500 responses.
	Development bool
}

func (d Deps) validate() error {
	switch {
	case d.UserSvc == nil:
		return errors.New("user service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service is required")
	case d.ProductSvc == nil:
		return errors.New("product service is required")
	case d.ReviewSvc == nil:
		return errors.New("review service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(requestIDMiddleware())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", idempotencyHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(readinessChecks(db, deps)))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	h := &handlers{logger: logger, deps: deps}
	auth := authMiddleware(deps.UserSvc)

	api := router.Group("/api")
	api.POST("/register", h.register)
	api.POST("/login", h.login)
	api.POST("/logout", h.logout)
	api.GET("/products/popular-list", h.popularProducts)
	api.GET("/reviews", h.listReviews)

	authed := api.Group("", auth)
	authed.GET("/cart", h.viewCart)
	authed.POST("/cart/add", h.addToCart)
	authed.PUT("/cart/update", h.updateCart)
	authed.DELETE("/cart/remove/:cartId", h.removeFromCart)
	authed.GET("/orders", h.listOrders)
	authed.POST("/checkout", h.checkout)
	authed.POST("/reviews", h.createReview)

	admin := authed.Group("/admin", adminOnly())
	admin.PATCH("/variants/:variantId", h.patchVariant)

	router.POST("/checkout", auth, h.checkout)

	return router, nil
}

// handlers carries what every route handler needs.
type handlers struct {
	logger *log.Logger
	deps   Deps
}
