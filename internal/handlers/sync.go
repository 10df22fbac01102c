package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
)

// GetSyncStatus returns the state of the catalog sync
// (GET /layers/sync)
func (h *Handler) GetSyncStatus(c *gin.Context) {
	status := h.catalogSrv.Status(c.Request.Context())
	c.JSON(http.StatusOK, v1.NewSyncStatus(status))
}

// StartSync introspects the feature database in the background
// (POST /layers/sync)
func (h *Handler) StartSync(c *gin.Context) {
	if err := h.catalogSrv.Start(c.Request.Context()); err != nil {
		respondError(c, err, "")
		return
	}

	status := h.catalogSrv.Status(c.Request.Context())
	c.JSON(http.StatusAccepted, v1.NewSyncStatus(status))
}
