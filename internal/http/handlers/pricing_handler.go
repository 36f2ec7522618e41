// README: Pricing configuration handlers (settings, zones, zone report, snapshot cache).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

type PricingHandler struct {
	pricing *pricing.Service
}

func NewPricingHandler(svc *pricing.Service) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

func (h *PricingHandler) UpdateSettings(c *gin.Context) {
	var settings pricing.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.pricing.UpdateSettings(c.Request.Context(), orgOf(c), settings); err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, settings)
}

// UpsertZone takes the zone id from the path; an id in the body is ignored.
func (h *PricingHandler) UpsertZone(c *gin.Context) {
	var z zone.Zone
	if err := c.ShouldBindJSON(&z); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	z.ID = types.ID(c.Param("id"))
	if err := h.pricing.UpsertZone(c.Request.Context(), orgOf(c), z); err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, z)
}

func (h *PricingHandler) ValidateZones(c *gin.Context) {
	rep, err := h.pricing.ValidateZones(c.Request.Context(), orgOf(c))
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"valid": rep.Valid(), "report": rep})
}

func (h *PricingHandler) InvalidateCache(c *gin.Context) {
	if err := h.pricing.InvalidateSnapshot(c.Request.Context(), orgOf(c)); err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}
