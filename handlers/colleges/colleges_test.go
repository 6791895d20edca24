package colleges

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"referral-portal-server/handlers/auth"
	"referral-portal-server/handlers/students"
	"referral-portal-server/models"
	"referral-portal-server/referrals"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Referral{}))

	svc := referrals.NewService(db)
	collegesH := NewHandler(svc)
	studentsH := students.NewHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/college/signup", collegesH.Signup)
	api.POST("/college/login", collegesH.Login)
	api.GET("/college/leaderboard", collegesH.Leaderboard)
	api.POST("/user/signup", studentsH.Signup)
	api.POST("/user/login", studentsH.Login)

	protected := api.Group("/")
	protected.Use(auth.Required(svc))
	{
		protected.GET("/user/me", collegesH.Me)
		protected.POST("/college/me/delete", collegesH.DeleteAccount)
		protected.POST("/college/:student_id", collegesH.RemoveStudent)
		protected.POST("/college/:student_id/enable", collegesH.EnableStudent)
		protected.POST("/college/:student_id/video/delete", collegesH.DeleteVideo)
	}

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body gin.H) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func signupCollege(t *testing.T, r *gin.Engine, email string) (token, code string) {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/college/signup", "", gin.H{
		"name":        "Alice",
		"email":       email,
		"password":    "secret123",
		"collegeName": "Test College",
		"phoneNumber": "0123456789",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token = resp["token"].(string)
	user := resp["user"].(map[string]interface{})
	code = user["referralCode"].(string)
	require.NotEmpty(t, token)
	require.Regexp(t, `^[A-Z0-9]{6}$`, code)
	return token, code
}

func signupStudent(t *testing.T, r *gin.Engine, phone, code string) uint {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/user/signup", "", gin.H{
		"name":         "Xavier",
		"schoolName":   "Test School",
		"password":     "secret123",
		"phoneNumber":  phone,
		"standard":     "10",
		"referralCode": code,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := resp["user"].(map[string]interface{})
	return uint(user["id"].(float64))
}

func TestSignupResponseIsRankedImmediately(t *testing.T) {
	r := setupRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/college/signup", "", gin.H{
		"name":        "Alice",
		"email":       "alice@example.com",
		"password":    "secret123",
		"collegeName": "Test College",
		"phoneNumber": "0123456789",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, float64(1), user["rank"])

	// The next college, still at zero referrals, ranks behind the first.
	w, resp = doJSON(t, r, http.MethodPost, "/api/v1/college/signup", "", gin.H{
		"name":        "Bob",
		"email":       "bob@example.com",
		"password":    "secret123",
		"collegeName": "Other College",
		"phoneNumber": "0123456789",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user = resp["user"].(map[string]interface{})
	assert.Equal(t, float64(2), user["rank"])
}

func TestCollegeSignupAndDuplicateEmail(t *testing.T) {
	r := setupRouter(t)

	signupCollege(t, r, "alice@example.com")

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/college/signup", "", gin.H{
		"name":        "Alice Again",
		"email":       "alice@example.com",
		"password":    "secret123",
		"collegeName": "Other College",
		"phoneNumber": "0123456789",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, resp["message"], "already exists")
}

func TestStudentSignupUnknownCode(t *testing.T) {
	r := setupRouter(t)
	signupCollege(t, r, "alice@example.com")

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/user/signup", "", gin.H{
		"name":         "Yara",
		"schoolName":   "Test School",
		"password":     "secret123",
		"phoneNumber":  "1000000002",
		"referralCode": "ZZZ999",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "referral code not found", resp["message"])
}

func TestReferralFlowThroughAPI(t *testing.T) {
	r := setupRouter(t)

	token, code := signupCollege(t, r, "alice@example.com")

	// Lowercase code still attributes to the college.
	studentID := signupStudent(t, r, "1000000001", strings.ToLower(code))

	w, _ := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/college/%d/enable", studentID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/user/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, float64(1), user["referralCount"])
	assert.Equal(t, float64(1), user["rank"])
	referralsList := user["referrals"].([]interface{})
	require.Len(t, referralsList, 1)
	assert.Equal(t, "Xavier", referralsList[0].(map[string]interface{})["name"])

	// Leaderboard is public and reflects the enable.
	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/college/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := resp["leaderboard"].([]interface{})
	require.Len(t, board, 1)
	top := board[0].(map[string]interface{})
	assert.Equal(t, float64(1), top["rank"])
	assert.Equal(t, float64(1), top["referralCount"])
	assert.Equal(t, "Test College", top["collegeName"])

	// Remove is idempotent at the API level.
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/college/%d", studentID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/college/%d", studentID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/user/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user = resp["user"].(map[string]interface{})
	assert.Equal(t, float64(0), user["referralCount"])
}

func TestStudentOpsRequireOwnership(t *testing.T) {
	r := setupRouter(t)

	_, codeA := signupCollege(t, r, "alice@example.com")
	tokenB, _ := signupCollege(t, r, "bob@example.com")

	studentID := signupStudent(t, r, "1000000001", codeA)

	// Bob cannot touch Alice's student; the id is not even acknowledged.
	w, _ := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/college/%d/enable", studentID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// And nothing without a token.
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/college/%d/enable", studentID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteAccountBlockedWhileStudentsRemain(t *testing.T) {
	r := setupRouter(t)

	token, code := signupCollege(t, r, "alice@example.com")
	signupStudent(t, r, "1000000001", code)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/college/me/delete", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, resp["message"], "still has referred students")
}
