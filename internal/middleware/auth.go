package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"trainingdesk/internal/auth"
	"trainingdesk/internal/rbac"
	"trainingdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie = "access_token"
	actorKey          = "actor"
)

// SetTokenCookie stores the access token as an HttpOnly cookie.
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite, secure := cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie.
func ClearTokenCookie(c *gin.Context) {
	sameSite, secure := cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", secure, true)
}

func cookieMode() (http.SameSite, bool) {
	if os.Getenv("GIN_MODE") == "release" {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// tokenFrom reads the token from the cookie first, then the Authorization header.
// ok is false when neither is present; a malformed header yields a non-empty msg.
func tokenFrom(c *gin.Context) (token string, msg string, ok bool) {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie, "", true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'", false
	}
	return parts[1], "", true
}

// Authenticate rejects requests without a valid access token and stores the actor
// in the context. Role checks are left to the services.
func Authenticate(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, msg, ok := tokenFrom(c)
		if !ok {
			if msg == "" {
				msg = "Authorization is missing"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, msg))
			return
		}

		actor, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth stores the actor when a valid token is present and lets anonymous
// requests through otherwise.
func OptionalAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, _, ok := tokenFrom(c); ok {
			if actor, err := tokens.Parse(tokenString); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

func setActor(c *gin.Context, actor rbac.Actor) {
	c.Set(actorKey, actor)
	c.Set("userID", actor.ID.String())
	c.Set("userRole", string(actor.Role))
}

// CurrentActor returns the actor stored by Authenticate or OptionalAuth.
func CurrentActor(c *gin.Context) (rbac.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return rbac.Actor{}, false
	}
	actor, ok := v.(rbac.Actor)
	return actor, ok
}
