package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinHandler serves the aggregated report. The response is always 200; the
// body carries the status.
func (c *Checker) GinHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Check(ctx.Request.Context()))
	}
}

// GinLivenessHandler reports that the process is serving requests.
func GinLivenessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}
