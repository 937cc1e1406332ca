package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"grocerfront/internal/cartapi"
	"grocerfront/internal/cartsync"
	"grocerfront/internal/domain"
)

type cartResponse struct {
	LineItems []domain.LineItem `json:"lineItems"`
	Totals    domain.CartTotals `json:"totals"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func writeCart(c *gin.Context, eng *cartsync.Engine) {
	items := eng.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	c.JSON(http.StatusOK, cartResponse{LineItems: items, Totals: eng.Totals()})
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cartsync.ErrRemoteUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": cartsync.ErrRemoteUnavailable.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	default:
		var gwErr *cartapi.GatewayError
		if errors.As(err, &gwErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": gwErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart operation failed"})
	}
}

func engineFor(c *gin.Context, deps Deps) (*cartsync.Engine, bool, bool) {
	eng, fresh, err := deps.Engines.For(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeCartError(c, err)
		return nil, false, false
	}
	return eng, fresh, true
}

func getCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eng, fresh, ok := engineFor(c, deps)
		if !ok {
			return
		}
		// A session transition already observed the cart; refetching here
		// would hit the remote service twice in one request.
		if !fresh {
			if err := eng.Refresh(c.Request.Context()); err != nil {
				writeCartError(c, err)
				return
			}
		}
		writeCart(c, eng)
	}
}

func addItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}
		eng, _, ok := engineFor(c, deps)
		if !ok {
			return
		}
		if err := eng.AddItem(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
			writeCartError(c, err)
			return
		}
		writeCart(c, eng)
	}
}

func updateItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		eng, _, ok := engineFor(c, deps)
		if !ok {
			return
		}
		if err := eng.UpdateItem(c.Request.Context(), c.Param("itemID"), req.Quantity); err != nil {
			writeCartError(c, err)
			return
		}
		writeCart(c, eng)
	}
}

func removeItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eng, _, ok := engineFor(c, deps)
		if !ok {
			return
		}
		if err := eng.RemoveItem(c.Request.Context(), c.Param("itemID")); err != nil {
			writeCartError(c, err)
			return
		}
		writeCart(c, eng)
	}
}

func clearCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		eng, _, ok := engineFor(c, deps)
		if !ok {
			return
		}
		if err := eng.ClearCart(c.Request.Context()); err != nil {
			writeCartError(c, err)
			return
		}
		writeCart(c, eng)
	}
}
