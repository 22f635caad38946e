package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"wagerpool/internal/models"
)

const (
	// AccountHeader carries the caller identity asserted by the gateway.
	AccountHeader = "X-Account-ID"

	callerKey = "caller"
)

// GatewayAuth accepts only requests forwarded by the trusted gateway and
// binds the caller identity it asserts. With an empty token only the
// identity header is required.
func GatewayAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token != "" {
			got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.Warningf("[GATEWAY_AUTH] rejected request for %s", c.FullPath())
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid gateway token"})
				return
			}
		}

		caller := strings.TrimSpace(c.GetHeader(AccountHeader))
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + AccountHeader})
			return
		}
		c.Set(callerKey, models.AccountID(caller))
		c.Next()
	}
}

// RateLimit throttles each caller to rps requests per second with the given
// burst. Non-positive values disable it.
func (h *HTTPHandler) RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := newCallerLimiter(rps, burst, 0)
	return func(c *gin.Context) {
		if !limiter.allow(string(callerFrom(c)), h.clock.Now("http", "ratelimit")) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) models.AccountID {
	v, ok := c.Get(callerKey)
	if !ok {
		return ""
	}
	id, _ := v.(models.AccountID)
	return id
}
