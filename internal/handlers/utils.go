package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondUnauthenticated is the fallback for a request that reached a
// handler without a principal in context. The auth middleware normally
// rejects those first.
func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
}
