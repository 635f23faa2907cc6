package handlers

import (
	_ "woosync/docs"
	"woosync/internal/middleware"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func RegisterRoutes(e *echo.Echo, syncH *SyncHandlers, productH *ProductHandlers, healthH *HealthHandlers) {
	e.GET("/health", healthH.LivenessCheck)
	e.GET("/health/ready", healthH.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := middleware.VersionRoute(e, "v1")
	v1.POST("/sync", syncH.SyncStore)
	v1.GET("/stores/:id/products", productH.ListStoreProducts)
}
