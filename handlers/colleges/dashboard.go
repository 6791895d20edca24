package colleges

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-portal-server/handlers"
	"referral-portal-server/handlers/auth"
	"referral-portal-server/models"
	"referral-portal-server/referrals"
)

// Me returns the authenticated principal. For a college rep that is the full
// dashboard: profile, enabled students in signup order, live count and rank.
// Students get their own profile back.
func (h *Handler) Me(c *gin.Context) {
	acct, ok := auth.CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
		return
	}

	if acct.Kind == models.KindStudent {
		c.JSON(http.StatusOK, gin.H{"user": studentJSON(*acct)})
		return
	}

	var dash *referrals.Dashboard
	err := withRetry(c.Request.Context(), func() error {
		var err error
		dash, err = h.Svc.GetDashboard(c.Request.Context(), acct.ID)
		return err
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	students := make([]gin.H, 0, len(dash.Enabled))
	for _, st := range dash.Enabled {
		students = append(students, studentJSON(st))
	}

	user := collegeJSON(dash.College, dash.Rank)
	user["referralCount"] = dash.EnabledCount
	user["referrals"] = students

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Leaderboard is public: every college ordered by enabled-student count,
// ties broken by signup time.
func (h *Handler) Leaderboard(c *gin.Context) {
	var rows []referrals.Standing
	err := withRetry(c.Request.Context(), func() error {
		var err error
		rows, err = h.Svc.Leaderboard(c.Request.Context())
		return err
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"rank":          row.Rank,
			"name":          row.College.Name,
			"collegeName":   row.College.OrganizationName,
			"referralCount": row.EnabledCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}
