package routes

import (
	"net/http"

	"github.com/01moynul/gotogro-members/internal/handlers"
	"github.com/01moynul/gotogro-members/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options configures the router beyond its handlers.
type Options struct {
	CORSOrigin  string
	LoginPerMin int
}

// CORSMiddleware tells the browser that the configured frontend origin may call the API.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.Log))
	router.Use(CORSMiddleware(opts.CORSOrigin))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", middleware.RateLimit(opts.LoginPerMin), h.Login)

		// --- Member Routes (Login Required) ---
		member := v1.Group("/")
		member.Use(middleware.AuthMiddleware(h.Tokens))
		member.Use(middleware.MemberMiddleware(h.DB))
		{
			// --- Profile ---
			member.GET("/profile", h.GetProfile)
			member.PUT("/profile", h.UpdateProfile)
			member.DELETE("/profile", h.DeleteProfile)
			member.POST("/profile/password", h.ChangePassword)

			// --- Personal Transactions ---
			member.GET("/transactions", h.GetTransactions)
			member.POST("/transactions", h.AddTransaction)
			member.POST("/transactions/delete", h.DeleteTransactions)

			// --- Sales ---
			member.GET("/sales", h.GetSalesHistory)
			member.POST("/sales", h.RecordSale)
			member.PUT("/sales/:id", h.UpdateSale)
			member.POST("/sales/delete", h.DeleteSales)

			// --- Inventory ---
			member.GET("/inventory", h.GetInventory)
			member.GET("/inventory/:slug", h.GetInventoryItem)

			// --- Notifications ---
			member.GET("/notifications", h.GetMyNotifications)
			member.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)

			member.GET("/dashboard", h.GetDashboardStats)
		}

		// --- Manager-Only Routes ---
		manager := v1.Group("/manager")
		manager.Use(middleware.AuthMiddleware(h.Tokens))
		manager.Use(middleware.ManagerMiddleware(h.DB))
		{
			manager.GET("/notifications", h.GetAllNotifications)
			manager.POST("/inventory", h.StockItem)
			manager.PUT("/inventory/:slug", h.SetInventoryAmount)
		}
	}

	return router
}
