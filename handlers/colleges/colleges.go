package colleges

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

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\d{10}$`)
)

// Signup registers a college rep and hands back their referral code.
func (h *Handler) Signup(c *gin.Context) {
	var input struct {
		Name             string `json:"name" binding:"required"`
		Email            string `json:"email" binding:"required"`
		Password         string `json:"password" binding:"required"`
		CollegeName      string `json:"collegeName" binding:"required"`
		YearOfGraduation string `json:"yearOfGraduation"`
		PhoneNumber      string `json:"phoneNumber" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data. Please fill in all required fields."})
		return
	}
	if !emailRe.MatchString(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter a valid email address"})
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

	acct, err := h.Svc.SignupCollege(c.Request.Context(), referrals.CollegeSignup{
		Name:             input.Name,
		Email:            input.Email,
		PasswordHash:     string(hashed),
		CollegeName:      input.CollegeName,
		YearOfGraduation: input.YearOfGraduation,
		PhoneNumber:      input.PhoneNumber,
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	go utils.SendReferralCodeEmail(acct.Contact, acct.Name, *acct.ReferralCode)

	// A brand-new college is ranked immediately, zero referrals and all.
	rank, err := h.Svc.RankOf(c.Request.Context(), acct.ID)
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
		"message": "Account created successfully.",
		"token":   token,
		"user":    collegeJSON(acct, rank),
	})
}

// Login authenticates a college rep by email and password.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data. Please provide a valid email and password."})
		return
	}

	acct, err := h.Svc.FindByContact(c.Request.Context(), models.KindCollege, input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	rank, err := h.Svc.RankOf(c.Request.Context(), acct.ID)
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
		"message": "Login successful.",
		"token":   token,
		"user":    collegeJSON(acct, rank),
	})
}

func collegeJSON(acct *models.Account, rank int) gin.H {
	code := ""
	if acct.ReferralCode != nil {
		code = *acct.ReferralCode
	}
	out := gin.H{
		"id":               acct.ID,
		"name":             acct.Name,
		"email":            acct.Contact,
		"phoneNumber":      acct.Phone,
		"collegeName":      acct.OrganizationName,
		"yearOfGraduation": acct.YearOfGraduation,
		"referralCode":     code,
		"referralCount":    acct.EnabledCount,
	}
	if rank > 0 {
		out["rank"] = rank
	}
	return out
}

func studentJSON(st models.Account) gin.H {
	out := gin.H{
		"id":         st.ID,
		"name":       st.Name,
		"schoolName": st.OrganizationName,
		"standard":   st.GroupLabel,
		"state":      st.State,
	}
	if st.VideoURL != nil {
		out["videoUrl"] = *st.VideoURL
	}
	return out
}
