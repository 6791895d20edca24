package colleges

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-portal-server/handlers"
	"referral-portal-server/handlers/auth"
	"referral-portal-server/models"
)

// ownStudent resolves the :student_id path param and checks the student is
// attributed to the authenticated college. Anything that is not the caller's
// own student answers 404 so student ids are not probeable across colleges.
func (h *Handler) ownStudent(c *gin.Context) (uint, bool) {
	principal, ok := auth.CurrentAccount(c)
	if !ok || principal.Kind != models.KindCollege {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return 0, false
	}

	id64, err := strconv.ParseUint(c.Param("student_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid student id"})
		return 0, false
	}
	studentID := uint(id64)

	ownerID, err := h.Svc.OwnerOf(c.Request.Context(), studentID)
	if err != nil || ownerID != principal.ID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return 0, false
	}

	return studentID, true
}

// EnableStudent flips a pending student to enabled, which is when they start
// counting towards the referral total and the leaderboard.
func (h *Handler) EnableStudent(c *gin.Context) {
	studentID, ok := h.ownStudent(c)
	if !ok {
		return
	}

	st, err := h.Svc.Enable(c.Request.Context(), studentID)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Student enabled successfully.",
		"student": studentJSON(*st),
	})
}

// RemoveStudent soft-deletes a student. Idempotent: removing an already
// removed student answers success.
func (h *Handler) RemoveStudent(c *gin.Context) {
	studentID, ok := h.ownStudent(c)
	if !ok {
		return
	}

	st, err := h.Svc.Remove(c.Request.Context(), studentID)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Student deleted successfully.",
		"student": studentJSON(*st),
	})
}

// PurgeStudent hard-deletes the student record and its referral edge.
func (h *Handler) PurgeStudent(c *gin.Context) {
	studentID, ok := h.ownStudent(c)
	if !ok {
		return
	}

	if err := h.Svc.Purge(c.Request.Context(), studentID); err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student permanently deleted."})
}

// DeleteAccount removes the authenticated college account. Refused while any
// referred student is still attached.
func (h *Handler) DeleteAccount(c *gin.Context) {
	principal, ok := auth.CurrentAccount(c)
	if !ok || principal.Kind != models.KindCollege {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
		return
	}

	if err := h.Svc.DeleteCollege(c.Request.Context(), principal.ID); err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted."})
}
