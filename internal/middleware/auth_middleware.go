package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Oceanbluesol/cmhindia/internal/models"
)

// SessionCookie carries the signed session token for the server-rendered
// surface; there is no Authorization header flow.
const SessionCookie = "session"

// AuthRequired resolves the current principal from the session cookie. It
// fails closed: any missing or invalid token redirects to the login page
// rather than continuing as a guest.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			redirectToLogin(c)
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			redirectToLogin(c)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			redirectToLogin(c)
			return
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			redirectToLogin(c)
			return
		}

		c.Set("user_id", userID)
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}
		c.Next()
	}
}

// AdminRequired gates moderation routes. The role is re-read from the profile
// row, not trusted from the token, so a demoted admin loses access as soon as
// the row changes. Non-admins are redirected home; no 403 is surfaced.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			redirectToLogin(c)
			return
		}

		gormDB := GetDB(c)
		if gormDB == nil {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		var profile models.Profile
		if err := gormDB.Select("role").Where("id = ?", userID).First(&profile).Error; err != nil {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		if profile.Role != models.RoleAdmin {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/auth/login")
	c.Abort()
}
