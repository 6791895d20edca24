package students

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"referral-portal-server/handlers"
	"referral-portal-server/models"
	"referral-portal-server/referrals"
	"referral-portal-server/utils"
)

type Handler struct {
	Svc *referrals.Service
}

func NewHandler(svc *referrals.Service) *Handler { return &Handler{Svc: svc} }

var phoneRe = regexp.MustCompile(`^\d{10}$`)

// Signup registers a student. A non-empty referral code must resolve to a
// college; an unknown code fails the signup outright rather than silently
// creating an unattributed account.
func (h *Handler) Signup(c *gin.Context) {
	var input struct {
		Name            string `json:"name" binding:"required"`
		SchoolName      string `json:"schoolName" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PhoneNumber     string `json:"phoneNumber" binding:"required"`
		Standard        string `json:"standard"`
		ReferralCode    string `json:"referralCode"`
		Address         string `json:"address"`
		FeedbackDetails string `json:"feedbackDetails"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data. Please fill in all required fields."})
		return
	}
	if !phoneRe.MatchString(input.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number must be exactly 10 digits"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	acct, err := h.Svc.SignupStudent(c.Request.Context(), referrals.StudentSignup{
		Name:            input.Name,
		PhoneNumber:     input.PhoneNumber,
		PasswordHash:    string(hashed),
		SchoolName:      input.SchoolName,
		Standard:        input.Standard,
		Address:         input.Address,
		FeedbackDetails: input.FeedbackDetails,
		ReferralCode:    input.ReferralCode,
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	token, err := utils.GenerateAccessToken(acct.ID)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signup successful.",
		"token":   token,
		"user":    studentJSON(acct),
	})
}

// Login authenticates a student by phone number and password.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		PhoneNumber string `json:"phoneNumber" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data. Please provide a valid phone number and password."})
		return
	}

	acct, err := h.Svc.FindByContact(c.Request.Context(), models.KindStudent, input.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid phone number or password."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid phone number or password."})
		return
	}

	token, err := utils.GenerateAccessToken(acct.ID)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"token":   token,
		"user":    studentJSON(acct),
	})
}

func studentJSON(acct *models.Account) gin.H {
	out := gin.H{
		"id":          acct.ID,
		"name":        acct.Name,
		"phoneNumber": acct.Contact,
		"schoolName":  acct.OrganizationName,
		"standard":    acct.GroupLabel,
		"state":       acct.State,
	}
	if acct.ReferredByCode != nil {
		out["referredBy"] = *acct.ReferredByCode
	}
	if acct.VideoURL != nil {
		out["videoUrl"] = *acct.VideoURL
	}
	return out
}
