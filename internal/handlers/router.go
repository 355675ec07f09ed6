package handlers

import (
	"brewshop/internal/auth"
	"brewshop/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Router struct {
	Tokens      *auth.Manager
	RateLimit   gin.HandlerFunc
	CORSOrigins []string
	MediaRoot   string

	API     *APIHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Order   *OrderHandler
	User    *UserHandler
	Review  *ReviewHandler
	Signup  *SignupHandler
}

func (r *Router) Engine() *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS(r.CORSOrigins))
	router.Use(middleware.Authenticate(r.Tokens))
	router.MaxMultipartMemory = 8 << 20

	limited := r.RateLimit
	if limited == nil {
		limited = func(c *gin.Context) { c.Next() }
	}
	requireAuth := middleware.RequireAuth()
	requireStaff := middleware.RequireStaff()

	router.GET("/health", r.API.Health)
	router.Static("/media", r.MediaRoot)

	// Auth endpoints
	router.POST("/api/register", limited, r.User.Register)
	router.POST("/api/login", limited, r.User.Login)
	router.POST("/api/token/", limited, r.User.ObtainToken)
	router.POST("/api/token/refresh/", limited, r.User.RefreshToken)
	router.POST("/change_password", limited, requireAuth, r.User.ChangePassword)
	router.POST("/recover_password", limited, r.User.RecoverPassword)
	router.POST("/change_recover_password", limited, r.User.ChangeRecoverPassword)
	router.GET("/api/order-stats/", r.Order.Stats)

	// Anonymous sessions
	router.GET("/api/session/", r.API.GetSession)
	router.POST("/api/session/", r.API.CreateSession)
	router.DELETE("/api/session/", r.API.DeleteSession)

	api := router.Group("/api/v1")
	{
		api.GET("/products/", r.Catalog.ListProducts)
		api.POST("/products/", requireStaff, r.Catalog.CreateProduct)
		api.GET("/products/:id/", r.Catalog.GetProduct)
		api.POST("/products/:id/add-to-wishlist/", r.Catalog.AddToWishlist)
		api.GET("/product-category/", r.Catalog.ListCategories)
		api.POST("/product-category/", requireStaff, r.Catalog.CreateCategory)
		api.GET("/wishlist/", r.Catalog.GetWishlist)
		api.GET("/stores/", r.Catalog.ListStores)

		api.GET("/review/", r.Review.ListReviews)
		api.POST("/review/", r.Review.CreateReview)
		api.GET("/review/:id/", r.Review.GetReview)
		api.POST("/review/:id/add_photo/", r.Review.AddPhoto)

		api.GET("/cart/", r.Cart.ListCarts)
		api.POST("/cart/", r.Cart.CreateCart)
		api.POST("/cart/add_to_cart/", r.Cart.AddToCart)
		api.GET("/cart/:id/", r.Cart.GetCart)
		api.PATCH("/cart/:id/", r.Cart.UpdateCart)
		api.DELETE("/cart/:id/", r.Cart.DeleteCart)
		api.POST("/cart/:id/remove_from_cart/", r.Cart.RemoveFromCart)
		api.POST("/cart/:id/update_quantity/", r.Cart.UpdateQuantity)

		api.POST("/shipping/", r.Order.CreateShipping)
		api.GET("/shipping/", r.Order.ListShipping)
		api.GET("/shipping/:cart_id/", r.Order.GetShipping)

		api.POST("/order/", r.Order.Checkout)
		api.GET("/order/:order_id/", r.Order.GetOrder)
		api.PATCH("/order/:order_id/", requireStaff, r.Order.UpdateOrderStatus)
		api.POST("/order/:order_id/payment/", r.Order.CreatePayment)
		api.GET("/order/:order_id/payment/", r.Order.ListPayments)
		api.GET("/orders/", r.Order.ListOrders)
		api.GET("/orders/:order_id/", r.Order.GetOrder)
		api.GET("/order-stats/", r.Order.Stats)
		api.POST("/order-tracking/", requireStaff, r.Order.CreateTracking)
		api.GET("/order-tracking/", r.Order.ListTracking)

		api.GET("/profile/", requireAuth, r.User.GetProfile)
		api.PATCH("/profile/", requireAuth, r.User.UpdateProfile)
		api.POST("/admin/users/:id/verify", requireStaff, r.User.VerifyUser)

		api.POST("/beer-club/signup/", r.Signup.BeerClubSignup)
		api.POST("/contact-us/signup/", r.Signup.ContactUs)
	}

	return router
}
