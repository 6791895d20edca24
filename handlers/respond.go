package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-portal-server/referrals"
)

// Error maps a core failure onto an HTTP response. The frontend renders the
// message field directly, so caller-facing errors carry a specific message;
// anything unexpected is logged and answered generically.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, referrals.ErrNotFound),
		errors.Is(err, referrals.ErrUnknownCode):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, referrals.ErrDuplicateContact),
		errors.Is(err, referrals.ErrAlreadyAttributed),
		errors.Is(err, referrals.ErrInvalidState),
		errors.Is(err, referrals.ErrReferredRemain):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Service temporarily unavailable. Please try again."})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong. Please try again later."})
	}
}
