package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"kestralog/database"
)

// gatewayTokenKey is the AppSetting key holding the bcrypt hash of the
// gateway access token.
const gatewayTokenKey = "gateway_token_hash"

// EnsureGatewayToken stores the bcrypt hash of the configured access token.
// An empty token removes any stored hash and leaves the gateway open.
func EnsureGatewayToken(token string) error {
	if token == "" {
		return database.DeleteSetting(gatewayTokenKey)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return database.SetSetting(gatewayTokenKey, string(hash))
}

// TokenAuthMiddleware enforces the gateway access token when one is set.
func TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash, ok, err := database.GetSetting(gatewayTokenKey)
		if err != nil {
			log.Printf("Failed to load gateway token: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "token check failed"})
			return
		}
		if !ok || hash == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid or missing token"})
			return
		}

		c.Next()
	}
}
