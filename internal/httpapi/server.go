package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the echo router with all routes registered.
func New(h *Handler) *echo.Echo {
	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.Pre(middleware.RemoveTrailingSlash())
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("/health", h.Health)
	r.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	routesAPIv1 := r.Group("/api/v1")
	{
		routesAPIv1.POST("/claims", h.SubmitClaim)
		routesAPIv1.GET("/stats", h.Stats)
		routesAPIv1.POST("/allocations/reload", h.ReloadAllocations)

		routesAPIv1Wallets := routesAPIv1.Group("/wallets")
		{
			routesAPIv1Wallets.GET("/:address/summary", h.WalletSummary)
			routesAPIv1Wallets.GET("/:address/allocation", h.WalletAllocation)
		}
	}

	r.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "route not found",
		})
	})

	return r
}
