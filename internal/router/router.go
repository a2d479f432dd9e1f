package router

import (
	"github.com/gin-gonic/gin"
	"github.com/malvarez-dev/tienda-backend/config"
	"github.com/malvarez-dev/tienda-backend/internal/app/controller"
	"github.com/malvarez-dev/tienda-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	categoryController *controller.CategoryController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	addressController  *controller.AddressController
	wishlistController *controller.WishlistController
	reviewController   *controller.ReviewController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	addressController *controller.AddressController,
	wishlistController *controller.WishlistController,
	reviewController *controller.ReviewController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		categoryController: categoryController,
		cartController:     cartController,
		orderController:    orderController,
		addressController:  addressController,
		wishlistController: wishlistController,
		reviewController:   reviewController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Tienda API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		}

		user := api.Group("/user")
		user.Use(r.authMiddleware.Authenticate())
		{
			user.GET("/profile", r.authController.GetProfile)
			user.PUT("/profile", r.authController.UpdateProfile)
			user.PUT("/change_password", r.authController.ChangePassword)

			user.GET("/addresses", r.addressController.ListAddresses)
			user.POST("/addresses", r.addressController.CreateAddress)
			user.PUT("/addresses/:id", r.addressController.UpdateAddress)
			user.DELETE("/addresses/:id", r.addressController.DeleteAddress)
		}

		products := api.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/all", r.productController.ListProducts)
			products.GET("/search", r.productController.SearchProducts)
			products.GET("/featured", r.productController.FeaturedProducts)
			products.GET("/stats", r.productController.GetStats)
			products.GET("/category/:slug", r.productController.ProductsByCategory)
			products.GET("/slug/:slug", r.productController.GetProductBySlug)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/variants", r.productController.GetVariants)
			products.GET("/:id/images", r.productController.GetImages)
			products.GET("/:id/reviews", r.reviewController.ListReviews)
			products.POST("/:id/reviews", r.authMiddleware.Authenticate(), r.reviewController.CreateReview)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:slug", r.categoryController.GetCategory)
			categories.GET("/:slug/children", r.categoryController.GetChildren)
		}

		// Cart endpoints serve both guests and authenticated users; the
		// optional middleware resolves the identity when a token is present.
		cart := api.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		{
			cart.GET("/get_cart", r.cartController.GetCart)
			cart.POST("/add", r.cartController.AddToCart)
			cart.PUT("/cart/update", r.cartController.UpdateCartItem)
			cart.DELETE("/cart/remove/:item_id", r.cartController.RemoveFromCart)
			cart.DELETE("/cart/clear", r.cartController.ClearCart)
			cart.GET("/cart/count", r.cartController.GetCartCount)
			cart.POST("/cart/merge", r.authMiddleware.Authenticate(), r.cartController.MergeCart)
		}

		orders := api.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("/checkout", r.orderController.Checkout)
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
		}

		wishlist := api.Group("/wishlist")
		wishlist.Use(r.authMiddleware.Authenticate())
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.DELETE("/:product_id", r.wishlistController.RemoveFromWishlist)
		}

		reviews := api.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
		}

		uploads := api.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presign", r.uploadController.PresignUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
