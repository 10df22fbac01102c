package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
)

const healthTimeout = 3 * time.Second

// Health runs every dependency check
// (GET /health)
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := v1.Health{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
