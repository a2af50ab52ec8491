package middleware

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/01moynul/gotogro-members/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Role-Based Middleware ---
//
// These run AFTER AuthMiddleware: they read 'userID' from the context and
// look up the user's role.
//

func queryUserRole(c *gin.Context, db *sql.DB, userID int64) (string, error) {
	var role string
	err := db.QueryRowContext(c, "SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	return role, err
}

// RoleMiddleware allows the request through only for the listed roles and
// stores the role under "userRole".
func RoleMiddleware(db *sql.DB, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}

		role, err := queryUserRole(c, db, userID.(int64))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// The token outlived its account.
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			}
			c.Abort()
			return
		}

		for _, r := range allowed {
			if role == r {
				c.Set("userRole", role)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient role"})
		c.Abort()
	}
}

// MemberMiddleware admits any registered user.
func MemberMiddleware(db *sql.DB) gin.HandlerFunc {
	return RoleMiddleware(db, models.RoleMember, models.RoleManager)
}

// ManagerMiddleware admits managers only.
func ManagerMiddleware(db *sql.DB) gin.HandlerFunc {
	return RoleMiddleware(db, models.RoleManager)
}
