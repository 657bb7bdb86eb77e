package echomw

import (
	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		LogRouteAccess(c, tl.Info1, "Route accessed", palette.Green)
		return nil
	}
}

// LogRouteAccess logs one request. Health checks drop to verbose.
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == "/healthz" {
		logLevel = tl.Verbose
		colorizer = palette.CyanDim
	}
	tl.Log(
		logLevel, colorizer, "%s: Method='%s', Path='%s', Status='%s', ClientIP='%s'",
		actionName, c.Request().Method, c.Path(), c.Response().Status, c.RealIP(),
	)
}
