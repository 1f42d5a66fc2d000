package router

import (
	"causalUplift/internal/middleware"
	"causalUplift/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupUpliftRoutes(api *echo.Group, handler *rest.UpliftHandler, authRequired echo.MiddlewareFunc) {
	uplift := api.Group("/uplift")

	uplift.POST("/reports", handler.GenerateReport, authRequired, middleware.AnalystOrAdmin())
	uplift.GET("/reports", handler.ListReports, authRequired)
	uplift.GET("/reports/:id", handler.GetReport, authRequired)
	uplift.GET("/chart", handler.LatestChart)
}

func SetupMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
