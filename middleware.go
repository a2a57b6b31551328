package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"therapy-cards/config"
	"therapy-cards/services"
)

const ownerKey = "owner"

// tokenClaims sind die erwarteten Claims eines Zugriffstokens; sub ist die
// Benutzer-ID.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// authMiddleware prüft das Bearer-Token und legt den Aufrufer im Kontext ab.
func authMiddleware(secret string, log *zap.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := &tokenClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			log.Debug("Token abgelehnt", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token without subject"})
			return
		}

		c.Set(ownerKey, services.Owner{ID: claims.Subject, Username: claims.Username})
		c.Next()
	}
}

// currentOwner liefert den von authMiddleware gesetzten Aufrufer.
func currentOwner(c *gin.Context) services.Owner {
	if v, ok := c.Get(ownerKey); ok {
		if owner, ok := v.(services.Owner); ok {
			return owner
		}
	}
	return services.Owner{}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
	}
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}
