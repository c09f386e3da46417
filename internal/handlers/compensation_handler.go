package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crescendorewards/backend/internal/compensation"
	"github.com/crescendorewards/backend/internal/services/settings"
)

// CompensationHandler serves the lock option catalog and live compensation
// previews for the submission form
type CompensationHandler struct {
	settings *settings.Service
}

// NewCompensationHandler creates a new compensation handler
func NewCompensationHandler(settings *settings.Service) *CompensationHandler {
	return &CompensationHandler{settings: settings}
}

// lockOptionView is a catalog entry plus its display label
type lockOptionView struct {
	compensation.LockOption
	Label string `json:"label"`
}

// ListLockOptions returns the lock option catalog
func (h *CompensationHandler) ListLockOptions(c *gin.Context) {
	opts := compensation.LockOptions()
	views := make([]lockOptionView, 0, len(opts))
	for _, opt := range opts {
		views = append(views, lockOptionView{LockOption: opt, Label: opt.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"lock_options": views})
}

// PreviewCompensation prices a floor amount against the current system rates
// without creating anything. Used by the submission form as the contributor
// types.
func (h *CompensationHandler) PreviewCompensation(c *gin.Context) {
	var req struct {
		FloorUSDAmount float64             `json:"floor_usd_amount"`
		LockOption     compensation.LockID `json:"lock_option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nctrRate, err := h.settings.NCTRRateUSD()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	claimValue, err := h.settings.ClaimValueUSD()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := compensation.Compute(req.FloorUSDAmount, req.LockOption, nctrRate, time.Now())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		// No floor amount, nothing to price.
		c.JSON(http.StatusOK, gin.H{"compensation": nil})
		return
	}

	claims, err := compensation.ClaimsRequired(req.FloorUSDAmount, claimValue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"compensation":    result,
		"claims_required": claims,
		"nctr_rate_usd":   nctrRate,
		"claim_value_usd": claimValue,
	})
}
