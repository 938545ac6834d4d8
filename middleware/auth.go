package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

const userKey = "currentUser"

// Role sets referenced by the route wiring; declared once here so the
// policy is readable in one place.
var (
	RolesAny    = []string{models.RoleUser, models.RoleExpert, models.RoleAdmin}
	RolesExpert = []string{models.RoleExpert, models.RoleAdmin}
	RolesAdmin  = []string{models.RoleAdmin}
)

// Auth validates the bearer token (cookie first, Authorization header as
// fallback), resolves it to a live user, and rejects suspended or deleted
// accounts. The resolved user is stored on the context.
func Auth(secret []byte, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := utils.VerifyToken(tokenStr, secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := st.Users().GetByID(c.Request.Context(), oid)
		if err != nil {
			// Token was fine but the account is gone.
			abort(c, http.StatusUnauthorized, "account no longer exists")
			return
		}
		if user.AccountStatus != models.AccountActive {
			abort(c, http.StatusForbidden, "account suspended")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireRole allows only users whose role is in the given set. Must run
// after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "insufficient permissions")
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
