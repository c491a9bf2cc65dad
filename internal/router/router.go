// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/catalog-api/internal/config"
	"github.com/javajoker/catalog-api/internal/events"
	"github.com/javajoker/catalog-api/internal/handlers"
	"github.com/javajoker/catalog-api/internal/middleware"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/services"
	"github.com/javajoker/catalog-api/internal/session"
)

const version = "1.0.0"

type Dependencies struct {
	Config    *config.Config
	Store     repository.Store
	Sessions  session.Store
	Publisher events.Publisher
}

// Initialize wires services and handlers and registers every route. Rate
// limiter housekeeping stops when ctx is done.
func Initialize(ctx context.Context, deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	// Initialize services
	authorizationService := services.NewAuthorizationService()
	storageService, err := services.NewStorageService(cfg, authorizationService)
	if err != nil {
		return nil, err
	}
	productService := services.NewProductService(deps.Store, authorizationService, publisher)
	reviewService := services.NewReviewService(deps.Store, authorizationService, services.NewRatingAggregator(), publisher)
	categoryService := services.NewCategoryService(deps.Store, authorizationService)
	authService := services.NewAuthService(deps.Store, deps.Sessions, cfg)
	permissionService := services.NewPermissionService(deps.Store, authorizationService)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService, storageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	authHandler := handlers.NewAuthHandler(authService, permissionService)

	generalLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.GeneralPerSecond), cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.NewRateLimiter(perMinute(cfg.RateLimit.AuthPerMinute), cfg.RateLimit.AuthPerMinute)
	go generalLimiter.Run(ctx.Done())
	go authLimiter.Run(ctx.Done())

	sessionRequired := middleware.SessionRequired(deps.Sessions)

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimiter.Middleware())
	r.Use(middleware.AuditLogMiddleware(deps.Store))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	if cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	auth := r.Group("/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/token", authHandler.Login)
		auth.POST("/logout", sessionRequired, authHandler.Logout)
		auth.GET("/me", sessionRequired, authHandler.GetProfile)
	}

	permission := r.Group("/permission")
	permission.Use(sessionRequired)
	{
		permission.PUT("/supplier", authHandler.ToggleSupplier)
	}

	categories := r.Group("/categories")
	{
		categories.GET("/", categoryHandler.GetCategories)
		categories.POST("/create", sessionRequired, categoryHandler.CreateCategory)
		categories.PUT("/update", sessionRequired, categoryHandler.UpdateCategory)
		categories.DELETE("/delete", sessionRequired, categoryHandler.DeleteCategory)
	}

	products := r.Group("/products")
	{
		products.GET("/", productHandler.GetProducts)
		products.POST("/create", sessionRequired, productHandler.CreateProduct)
		products.POST("/images", sessionRequired, productHandler.UploadImage)
		products.GET("/detail/:product_slug", productHandler.GetProduct)
		products.PUT("/detail/:product_slug", sessionRequired, productHandler.UpdateProduct)
		products.DELETE("/delete", sessionRequired, productHandler.DeleteProduct)
		products.GET("/:category_slug", productHandler.GetProductsByCategory)
	}

	reviews := r.Group("/reviews")
	{
		reviews.GET("/", reviewHandler.GetReviews)
		reviews.POST("/create", sessionRequired, reviewHandler.CreateReview)
		reviews.DELETE("/delete", sessionRequired, reviewHandler.DeleteRating)
		reviews.GET("/:product_slug", reviewHandler.GetProductReviews)
	}

	return r, nil
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}
