// internal/utils/context.go
package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/northfab/portal-backend/internal/models"
)

// ActorFromContext rebuilds the verified identity capability set by the
// auth middleware. Returns false when the request is unauthenticated.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	idStr, exists := c.Get("account_id")
	if !exists {
		return models.Actor{}, false
	}

	roleStr, exists := c.Get("role")
	if !exists {
		return models.Actor{}, false
	}

	id, err := uuid.Parse(idStr.(string))
	if err != nil {
		return models.Actor{}, false
	}

	return models.Actor{
		AccountID: id,
		Role:      models.AccountRole(roleStr.(string)),
	}, true
}
