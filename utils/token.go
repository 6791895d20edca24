package utils

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret     []byte
	jwtSecretOnce sync.Once
)

// JwtSecret returns the HS256 signing key from the environment. A missing
// JWT_SECRET falls back to an insecure development key and logs loudly.
func JwtSecret() []byte {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			log.Println("JWT_SECRET is not set; using an insecure development secret")
			secret = "insecure-dev-secret"
		}
		jwtSecret = []byte(secret)
	})
	return jwtSecret
}

// GenerateAccessToken creates a new JWT access token for an account
func GenerateAccessToken(accountID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": accountID,
		"exp":        time.Now().Add(72 * time.Hour).Unix(), // Token expires in 72 hours
	})

	return token.SignedString(JwtSecret())
}
