// Package httpapi is the REST surface of the server: link lifecycle, claim
// settlement, the wallet bridge, and the admin endpoints.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ziplink/internal/logging"
	"ziplink/internal/server/metrics"
	"ziplink/internal/server/services"
)

// Handler bundles the services behind the REST routes.
type Handler struct {
	links     *services.LinkService
	settle    *services.SettlementService
	bridge    *services.BridgeService
	analytics *services.AnalyticsService
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func NewHandler(links *services.LinkService, settle *services.SettlementService,
	bridge *services.BridgeService, analytics *services.AnalyticsService,
	logger logging.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		links:     links,
		settle:    settle,
		bridge:    bridge,
		analytics: analytics,
		logger:    logger,
		metrics:   m,
	}
}

// NewRouter wires all routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.POST("/ziplink/create", h.createLink)
		api.GET("/ziplink/:linkId", h.getLink)
		api.DELETE("/ziplink/:linkId", h.cancelLink)
		api.POST("/ziplink/claim", h.claim)

		api.POST("/wallet/connect", h.walletConnect)
		api.POST("/wallet/sign-transaction", h.walletSignTransaction)
		api.POST("/wallet/sign-message", h.walletSignMessage)
		api.POST("/wallet/disconnect", h.walletDisconnect)

		api.GET("/admin/ziplinks", h.adminListLinks)
		api.GET("/admin/analytics", h.adminAnalytics)
		api.POST("/admin/ziplinks/:linkId/reconcile", h.adminReconcile)
	}

	return router
}
