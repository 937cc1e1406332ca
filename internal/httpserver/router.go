package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/session/anonymous", anonymousSessionHandler)

	router.GET("/products", listProductsHandler(deps))
	router.GET("/recommendations/product/:productID", productRecommendationsHandler(deps))
	router.GET("/recommendations/me", userRecommendationsHandler(deps))

	cart := router.Group("/cart", requireSession())
	{
		cart.GET("", getCartHandler(deps))
		cart.POST("/items", addItemHandler(deps))
		cart.PUT("/items/:itemID", updateItemHandler(deps))
		cart.DELETE("/items/:itemID", removeItemHandler(deps))
		cart.DELETE("", clearCartHandler(deps))
	}

	return router
}
