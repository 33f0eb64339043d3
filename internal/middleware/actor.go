package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pto-approval-api/internal/constants"
	apierrors "github.com/yukikurage/pto-approval-api/internal/errors"
	"github.com/yukikurage/pto-approval-api/internal/logging"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/repository"
	"gorm.io/gorm"
)

// RequireActiveUser loads the session user and rejects accounts that are
// still pending admin approval. Must run after RequireAuth.
func RequireActiveUser(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Session outlived the account
				apierrors.Unauthorized(c, "")
			} else {
				logging.FromContext(c.Request.Context(), nil).WithError(err).Error("Failed to load session user")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		if !user.IsActive() {
			apierrors.AccountPending(c)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, user)
		c.Next()
	}
}

// RequireRole allows only actors holding one of roles. Must run after
// RequireActiveUser.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Insufficient role for this action")
		c.Abort()
	}
}

// GetActor retrieves the active user loaded by RequireActiveUser
func GetActor(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil, false
	}
	actor, ok := value.(*models.User)
	return actor, ok
}
