package routes

import (
	"net/http"
	"time"

	"basketly/handlers"
	"basketly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCartRoutes registers cart session, delivery slot and quote endpoints.
func RegisterCartRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	sessions := r.Group("/api/cart/sessions")
	{
		sessions.POST("", hb.CreateSession)
		sessions.DELETE("/:sessionID", hb.CloseSession)

		sessions.GET("/:sessionID/slots", hb.GetSlots)
		sessions.GET("/:sessionID/slots/stream", hb.StreamSlots)
		sessions.POST("/:sessionID/slots/select", hb.SelectSlot)
		sessions.POST("/:sessionID/slots/refresh", hb.RefreshSlots)

		sessions.PUT("/:sessionID/cart", hb.UpdateCart)
		sessions.GET("/:sessionID/quote", hb.GetQuote)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Hi, I'm Basketly",
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCartRoutes(r, hb)
}
