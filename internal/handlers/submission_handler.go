package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crescendorewards/backend/internal/models"
	"github.com/crescendorewards/backend/internal/services/submission"
)

// SubmissionHandler handles contributor-facing submission endpoints
type SubmissionHandler struct {
	workflow *submission.WorkflowService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(workflow *submission.WorkflowService) *SubmissionHandler {
	return &SubmissionHandler{workflow: workflow}
}

// currentUserID pulls the authenticated user id set by the auth middleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

func currentUserEmail(c *gin.Context) string {
	if val, exists := c.Get("email"); exists {
		if email, ok := val.(string); ok {
			return email
		}
	}
	return ""
}

// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return uuid.Nil, false
	}
	return id, true
}

// writeWorkflowError maps workflow errors onto HTTP statuses
func writeWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
	case submission.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case submission.IsConflictError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CreateSubmission registers a brand new reward proposal
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input submission.NewSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.workflow.Create(userID, currentUserEmail(c), input)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// ListSubmissions returns the contributor's submissions. Pass
// ?include_history=true to see superseded versions too.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	includeHistory := c.Query("include_history") == "true"
	subs, err := h.workflow.ListForSubmitter(userID, includeHistory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// GetSubmission returns one submission with its full version history
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	sub, err := h.workflow.GetSubmission(id)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	history, err := h.workflow.Chain().Lineage(sub.RootSubmissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The requested version may be superseded; always tell the caller where
	// the chain head is now.
	head, err := h.workflow.Chain().ResolveLatest(sub.RootSubmissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission":     sub,
		"latest_version": head,
		"history":        history,
	})
}

// revisionRequest is the shared body for resubmit and request-update
type revisionRequest struct {
	Changes      submission.Changes `json:"changes"`
	VersionNotes string             `json:"version_notes"`
}

// ResubmitSubmission creates a fresh pending version from a rejected one
func (h *SubmissionHandler) ResubmitSubmission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !h.ownsSubmission(c, id, userID) {
		return
	}

	var req revisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.workflow.Resubmit(id, req.Changes, req.VersionNotes)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// RequestUpdate creates a fresh pending version from an approved one
func (h *SubmissionHandler) RequestUpdate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !h.ownsSubmission(c, id, userID) {
		return
	}

	var req revisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.workflow.RequestUpdate(id, req.Changes, req.VersionNotes)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// ownsSubmission verifies the submission belongs to the caller and writes the
// response when it does not
func (h *SubmissionHandler) ownsSubmission(c *gin.Context, id, userID uuid.UUID) bool {
	sub, err := h.workflow.GetSubmission(id)
	if err != nil {
		writeWorkflowError(c, err)
		return false
	}
	if sub.SubmitterID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this submission"})
		return false
	}
	return true
}

// GetRejectionReason returns the reviewer's reason for a rejected submission
func (h *SubmissionHandler) GetRejectionReason(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	sub, err := h.workflow.GetSubmission(id)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	if sub.Status != models.SubmissionStatusRejected {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission is not rejected"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission_id": sub.ID,
		"reason":        h.workflow.RejectionReason(sub),
	})
}
