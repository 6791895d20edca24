package main

import (
	"log"
	"os"
	"strings"
	"time"

	"referral-portal-server/handlers/auth"
	"referral-portal-server/handlers/colleges"
	"referral-portal-server/handlers/students"
	"referral-portal-server/migrations"
	"referral-portal-server/referrals"
	"referral-portal-server/seed"
	"referral-portal-server/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}
}

func allowedOrigins() []string {
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		return strings.Split(v, ",")
	}
	return []string{"http://localhost:5173"}
}

func main() {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	utils.ConnectDatabase()

	migrations.MigrateAccounts()
	migrations.MigrateReferrals()

	svc := referrals.NewService(utils.DB)

	// Seed Initial Data
	if err := seed.SeedDemoCollege(svc); err != nil {
		log.Fatalf("Failed to seed demo college: %v", err)
	}

	collegesH := colleges.NewHandler(svc)
	studentsH := students.NewHandler(svc)

	if err := os.MkdirAll(colleges.UploadDir(), 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}
	r.Static("/uploads", colleges.UploadDir())

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
		protected.POST("/college/:student_id/purge", collegesH.PurgeStudent)
		protected.POST("/college/:student_id/upload", collegesH.UploadVideo)
		protected.POST("/college/:student_id/video/delete", collegesH.DeleteVideo)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
