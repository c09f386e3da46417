package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crescendorewards/backend/internal/models"
	"github.com/crescendorewards/backend/internal/services/settings"
	"github.com/crescendorewards/backend/internal/services/submission"
)

// AdminHandler handles the review queue and system configuration endpoints
type AdminHandler struct {
	db       *gorm.DB
	workflow *submission.WorkflowService
	settings *settings.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, workflow *submission.WorkflowService, settingsSvc *settings.Service) *AdminHandler {
	return &AdminHandler{
		db:       db,
		workflow: workflow,
		settings: settingsSvc,
	}
}

// ListReviewQueue returns submission heads awaiting review, optionally
// filtered by ?status=
func (h *AdminHandler) ListReviewQueue(c *gin.Context) {
	status := models.SubmissionStatus(c.Query("status"))
	subs, err := h.workflow.ListForReview(status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// reviewRequest is the admin's decision body
type reviewRequest struct {
	AdminNotes *string `json:"admin_notes,omitempty"`
	Reason     *string `json:"reason,omitempty"`
}

// ApproveSubmission approves a pending head and publishes it to the catalog
func (h *AdminHandler) ApproveSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reviewerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.workflow.Approve(id, reviewerID, req.AdminNotes)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

// RejectSubmission rejects a pending head with a structured reason
func (h *AdminHandler) RejectSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reviewerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.workflow.Reject(id, reviewerID, req.AdminNotes, req.Reason)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

// CompareVersions returns a field-by-field diff of a resubmission against the
// version it replaced, or against an explicitly named version
func (h *AdminHandler) CompareVersions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	current, err := h.workflow.GetSubmission(id)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	previousID := current.ParentSubmissionID
	if raw := c.Param("otherId"); raw != "" {
		otherID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comparison ID"})
			return
		}
		previousID = &otherID
	}
	if previousID == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission has no previous version to compare against"})
		return
	}

	previous, err := h.workflow.GetSubmission(*previousID)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	if previous.RootSubmissionID != current.RootSubmissionID {
		c.JSON(http.StatusConflict, gin.H{"error": "Submissions belong to different chains"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_version":  current.Version,
		"previous_version": previous.Version,
		"diff":             submission.DiffSubmissions(previous, current),
	})
}

// GetSettings returns the system pricing configuration
func (h *AdminHandler) GetSettings(c *gin.Context) {
	claimValue, err := h.settings.ClaimValueUSD()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	nctrRate, err := h.settings.NCTRRateUSD()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claim_value_usd": claimValue,
		"nctr_rate_usd":   nctrRate,
	})
}

// GetSetting returns a single setting by key
func (h *AdminHandler) GetSetting(c *gin.Context) {
	setting, err := h.settings.Get(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// UpdateSetting updates a single system setting. Changes only affect future
// submissions; existing snapshots are never rewritten.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.settings.Update(c.Param("key"), req.Value)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// GetChainHealth returns recent repair-scan findings
func (h *AdminHandler) GetChainHealth(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.workflow.RecentInconsistencies(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inconsistencies": rows})
}

// RepairChain triggers an on-demand repair of a single lineage
func (h *AdminHandler) RepairChain(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	sub, err := h.workflow.GetSubmission(id)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	finding, err := h.workflow.Chain().RepairChain(sub.RootSubmissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if finding == nil {
		c.JSON(http.StatusOK, gin.H{"status": "consistent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "repaired", "inconsistency": finding})
}
