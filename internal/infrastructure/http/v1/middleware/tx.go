package middleware

import (
	"github.com/gin-gonic/gin"

	"stocklot/internal/infrastructure/storage/postgres"
)

// Database middleware injects the TxManager into the request context.
// Repositories retrieve it with postgres.MustGetTxManager; must run
// before any handler that touches storage.
func Database(txm *postgres.TxManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := postgres.WithTxManager(c.Request.Context(), txm)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
