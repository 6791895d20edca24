package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequestToken pulls the JWT out of a request. The Authorization header wins;
// the token cookie is the fallback (one frontend variant sends the token as a
// cookie instead of a bearer header).
func RequestToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie, nil
	}

	return "", errors.New("missing authorization token")
}

// ExtractAccountIDFromToken validates a signed token and returns the account
// id claim.
func ExtractAccountIDFromToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JwtSecret(), nil
	})

	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	accountIDFloat, ok := claims["account_id"].(float64) // JWT numeric values are float64
	if !ok {
		return 0, errors.New("invalid account ID in token")
	}

	return uint(accountIDFloat), nil
}
