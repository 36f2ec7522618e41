// README: Quote handlers: price, create, get, cost override, status transition.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vtcquote/internal/http/middleware"
	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/modules/quote"
	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
	quotes  *quote.Service
}

func NewQuoteHandler(pricingSvc *pricing.Service, quoteSvc *quote.Service) *QuoteHandler {
	return &QuoteHandler{pricing: pricingSvc, quotes: quoteSvc}
}

type transitionReq struct {
	Status quote.Status `json:"status" binding:"required"`
}

// Price returns the engine result without persisting it.
func (h *QuoteHandler) Price(c *gin.Context) {
	var in pricing.QuoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.pricing.Quote(c.Request.Context(), orgOf(c), in)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var in pricing.QuoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.quotes.Create(c.Request.Context(), quote.CreateCommand{
		OrgID:     orgOf(c),
		CreatedBy: middleware.CallerUID(c),
		Input:     in,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, q)
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing quote id")
		return
	}
	q, err := h.quotes.Get(c.Request.Context(), orgOf(c), types.ID(id))
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

// ApplyCostOverride records the caller as editor; editedBy and editedAt in the body are ignored.
func (h *QuoteHandler) ApplyCostOverride(c *gin.Context) {
	var o shadow.CostOverride
	if err := c.ShouldBindJSON(&o); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o.EditedBy = middleware.CallerUID(c)
	q, err := h.quotes.ApplyCostOverride(c.Request.Context(), quote.OverrideCommand{
		OrgID:    orgOf(c),
		QuoteID:  types.ID(c.Param("id")),
		Override: o,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *QuoteHandler) Transition(c *gin.Context) {
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "missing status")
		return
	}
	q, err := h.quotes.Transition(c.Request.Context(), quote.TransitionCommand{
		OrgID:   orgOf(c),
		QuoteID: types.ID(c.Param("id")),
		To:      req.Status,
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func orgOf(c *gin.Context) types.ID {
	return types.ID(middleware.CallerOrg(c))
}
