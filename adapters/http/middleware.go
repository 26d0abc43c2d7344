package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	identityUC "github.com/reclaimhq/reclaim/internal/application/usecase/identity"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

// ErrorMiddleware maps errors pushed via c.Error onto the taxonomy's HTTP
// statuses.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		err := last.Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if !errors.Is(err, apperror.ErrNotFound) && !errors.Is(err, apperror.ErrInvalidInput) {
				log.Error("request failed", err)
			}
			c.JSON(apperror.ToHTTPStatus(err), appErr.ToJSON())
			return
		}

		log.Error("unexpected request failure", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ActivityMiddleware marks user activity for the idle auto-logout timer.
func ActivityMiddleware(mgr *identityUC.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		mgr.Touch()
		c.Next()
	}
}

// RequireResolved rejects requests while no identity is resolved.
func RequireResolved(mgr *identityUC.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mgr.State() != identityUC.StateResolved {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Next()
	}
}
