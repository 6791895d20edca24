package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-portal-server/models"
	"referral-portal-server/referrals"
	"referral-portal-server/utils"
)

const accountKey = "account"

// Required authenticates the request and loads the account behind the token
// into the gin context. Every protected handler reads its principal from
// there; nothing is kept in ambient globals.
func Required(svc *referrals.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.RequestToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			c.Abort()
			return
		}

		accountID, err := utils.ExtractAccountIDFromToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			c.Abort()
			return
		}

		acct, err := svc.Get(c.Request.Context(), accountID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Account not found"})
			c.Abort()
			return
		}

		c.Set(accountKey, acct)
		c.Next()
	}
}

// CurrentAccount returns the authenticated principal set by Required.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, exists := c.Get(accountKey)
	if !exists {
		return nil, false
	}
	acct, ok := v.(*models.Account)
	return acct, ok
}
