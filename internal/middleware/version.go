package middleware

import (
	"github.com/labstack/echo/v4"
)

// VersionHeader stamps responses with the API version they were served under.
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// VersionRoute creates a version-specific route group
func VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(VersionHeader(version))
	return group
}
