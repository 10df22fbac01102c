package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
)

// maxFilterSize bounds the Filter document of POST /layers/:name/filter.
const maxFilterSize = 1 << 20

// ListLayers returns the catalog
// (GET /layers)
func (h *Handler) ListLayers(c *gin.Context) {
	layers, err := h.catalogSrv.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, v1.NewLayerList(layers))
}

// GetLayer returns one layer with its columns
// (GET /layers/:name)
func (h *Handler) GetLayer(c *gin.Context) {
	layer, err := h.catalogSrv.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, v1.NewLayer(*layer, true))
}

// CompileFilter translates the Filter XML body to a WHERE expression
// (POST /layers/:name/filter)
func (h *Handler) CompileFilter(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFilterSize+1))
	if err != nil {
		exception(c, http.StatusBadRequest, CodeInvalidParameterValue, "FILTER", err)
		return
	}
	if len(body) > maxFilterSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "filter document too large", "code": CodeInvalidParameterValue})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must hold a Filter document", "code": CodeMissingParameterValue, "locator": "FILTER"})
		return
	}

	name := c.Param("name")
	sql, err := h.featureSrv.CompileFilter(c.Request.Context(), name, body)
	if err != nil {
		respondError(c, err, "FILTER")
		return
	}

	c.JSON(http.StatusOK, v1.CompileResponse{Layer: name, Sql: sql})
}
