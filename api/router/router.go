package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson"

	"eo-tracker/api/handlers"
	"eo-tracker/api/middleware"
	"eo-tracker/db"
	_ "eo-tracker/docs"
	"eo-tracker/services"
)

func New(svc *services.OrderService) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestTrace())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.SecurityHeaders())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Static viewer
	r.StaticFile("/", "./web/index.html")

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/orders", handlers.ListOrdersHandler(svc))
		api.GET("/orders/:document_number", handlers.GetOrderHandler(svc))
		api.POST("/orders/refresh", handlers.RefreshOrdersHandler(svc))
		api.POST("/orders/:document_number/regenerate", handlers.RegenerateSummaryHandler(svc))
	}

	return r
}
