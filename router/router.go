package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restopos/loyalty-pos/controllers"
	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/middlewares"
	"github.com/restopos/loyalty-pos/orders"
)

func SetupRouter(db *gorm.DB, cfgm *loyalty.ConfigManager, engine *loyalty.Engine, cards *loyalty.CardStore, orderSvc *orders.Service) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userController := controllers.NewUserController(db)
	configController := controllers.NewConfigController(cfgm)
	loyaltyController := controllers.NewLoyaltyController(engine)
	cardController := controllers.NewCardController(cards, engine)
	orderController := controllers.NewOrderController(orderSvc)
	adminController := controllers.NewAdminController(engine, orderSvc)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	loginLimiter := middlewares.NewStrictRateLimiter()
	r.POST("/login", loginLimiter, userController.Login)
	r.POST("/register", loginLimiter, userController.Register)

	// Websocket endpoint per staff screen, token passed as a query param
	// because browsers cannot set headers on the ws handshake.
	r.GET("/ws/:role", middlewares.WebSocketAuthMiddleware(), controllers.EventsHandler)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", userController.GetProfile)
		api.GET("/users", middlewares.RequireRoles("admin"), userController.GetAllUsers)

		orderGroup := api.Group("/orders")
		{
			orderGroup.GET("", orderController.GetAllOrders)
			orderGroup.POST("", middlewares.RequireRoles("waiter", "cashier"), orderController.CreateOrder)
			orderGroup.GET("/:order_id", orderController.GetOrderByID)
			orderGroup.PATCH("/:order_id/status", middlewares.RequireRoles("waiter", "kitchen", "bar", "cashier"), orderController.AdvanceStatus)
			orderGroup.PATCH("/:order_id/dishes/:line/:unit", middlewares.RequireRoles("kitchen"), orderController.MarkDishPrepared)
			orderGroup.PATCH("/:order_id/drinks/:line/:unit", middlewares.RequireRoles("bar", "waiter"), orderController.MarkDrinkDelivered)
			orderGroup.DELETE("", middlewares.RequireRoles("admin"), orderController.ResetOrders)
		}

		// per-IP throttle on card lookups, the endpoint exposed to scan guessing
		lookupLimiter := middlewares.NewRateLimiter(30, 60)

		loyaltyGroup := api.Group("/loyalty")
		{
			loyaltyGroup.GET("/customers", loyaltyController.GetAllCustomers)
			loyaltyGroup.POST("/customers", middlewares.RequireRoles("waiter", "cashier"), loyaltyController.RegisterCustomer)
			loyaltyGroup.PATCH("/customers/:customer_id", middlewares.RequireRoles("admin", "cashier"), loyaltyController.UpdateCustomer)
			loyaltyGroup.GET("/customers/:customer_id/transactions", loyaltyController.GetCustomerTransactions)
			loyaltyGroup.GET("/cards/:card_id", lookupLimiter.RateLimit(), loyaltyController.LookupCard)
			loyaltyGroup.POST("/accrue", middlewares.RequireRoles("cashier", "waiter"), loyaltyController.Accrue)
			loyaltyGroup.POST("/redeem", middlewares.RequireRoles("cashier"), loyaltyController.Redeem)
			loyaltyGroup.GET("/transactions", loyaltyController.GetAllTransactions)
		}

		cardGroup := api.Group("/cards")
		{
			cardGroup.GET("/:card_id", cardController.ReadCard)
			cardGroup.PUT("/:card_id", middlewares.RequireRoles("admin", "cashier"), cardController.WriteCard)
			cardGroup.POST("/:card_id/initialize", middlewares.RequireRoles("admin", "cashier"), cardController.InitializeCard)
			cardGroup.PATCH("/:card_id/points", middlewares.RequireRoles("admin", "cashier"), cardController.UpdateCardPoints)
			cardGroup.DELETE("/:card_id", middlewares.RequireRoles("admin"), cardController.EraseCard)
			cardGroup.GET("/:card_id/tech", cardController.GetCardTechInfo)
			cardGroup.GET("/:card_id/status", cardController.GetCardStatus)
		}

		configGroup := api.Group("/config")
		{
			configGroup.GET("", configController.GetConfig)
			configGroup.GET("/summary", configController.GetConfigSummary)
			configGroup.PUT("", middlewares.RequireRoles("admin"), configController.SaveConfig)
		}

		api.GET("/admin/stats", middlewares.RequireRoles("admin"), adminController.GetDashboardStats)
	}

	return r
}
