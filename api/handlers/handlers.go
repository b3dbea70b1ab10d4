package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eo-tracker/cache"
	"eo-tracker/services"
)

// ListOrdersHandler godoc
// @Summary      List executive orders
// @Description  List cached executive orders with their summary status
// @Tags         orders
// @Produce      json
// @Success      200  {object}  dto.OrderListDTO
// @Failure      503  {object}  map[string]string
// @Router       /orders [get]
func ListOrdersHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.List(c.Request.Context())
		if errors.Is(err, cache.ErrNoSnapshot) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "order data is still being prepared, try again shortly"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetOrderHandler godoc
// @Summary      Get executive order
// @Description  Get a single executive order by its Federal Register document number, with its AI summary
// @Tags         orders
// @Param        document_number  path  string  true  "Federal Register document number"
// @Produce      json
// @Success      200  {object}  dto.OrderDetailDTO
// @Failure      404  {object}  map[string]string
// @Router       /orders/{document_number} [get]
func GetOrderHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Get(c.Request.Context(), c.Param("document_number"))
		if errors.Is(err, services.ErrOrderNotFound) || errors.Is(err, cache.ErrNoSnapshot) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// RefreshOrdersHandler godoc
// @Summary      Refresh order snapshot
// @Description  Fetch the latest executive orders from the Federal Register and enqueue new ones for summarization
// @Tags         orders
// @Produce      json
// @Success      200  {object}  dto.RefreshResultDTO
// @Router       /orders/refresh [post]
func RefreshOrdersHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Refresh(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// RegenerateSummaryHandler godoc
// @Summary      Regenerate order summary
// @Description  Reset the summarization queue entry for an order so a fresh summary is generated
// @Tags         orders
// @Param        document_number  path  string  true  "Federal Register document number"
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /orders/{document_number}/regenerate [post]
func RegenerateSummaryHandler(svc *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Regenerate(c.Request.Context(), c.Param("document_number"))
		switch {
		case errors.Is(err, services.ErrRegenerationDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "summary regeneration is disabled"})
		case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, cache.ErrNoSnapshot):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		}
	}
}
