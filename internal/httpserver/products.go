package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grocerfront/internal/domain"
	"grocerfront/internal/recommend"
)

func listProductsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := deps.Catalog.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(recommend.DefaultLimit)))
	if err != nil || limit <= 0 {
		return recommend.DefaultLimit
	}
	return limit
}

func productRecommendationsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		products := deps.Recs.ForProduct(c.Request.Context(), c.Param("productID"), limitParam(c))
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func userRecommendationsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		products := deps.Recs.ForUser(c.Request.Context(), userID, limitParam(c))
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
