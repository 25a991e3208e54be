package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

const CurrentUserKey = "current_user"

// AuthMiddleware verifies the bearer token and resolves the embedded email
// to a persisted user, which is stored in the request context. Every token
// problem is answered with the same generic 401; a verified token whose user
// no longer exists terminates the request with 404.
func AuthMiddleware(db *gorm.DB, tokens *services.TokenService, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": services.ErrInvalidToken.Error(),
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		email, err := tokens.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": err.Error(),
			})
			return
		}

		user, err := users.GetUserByEmail(db, email)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"detail": services.ErrUserNotFound.Error(),
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"detail": err.Error(),
			})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
