// README: Webhook-secret auth middleware.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// secretHeader is the header Telegram attaches to webhook deliveries when
// the webhook was registered with a secret token.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookAuth rejects webhook deliveries whose secret token does not match
// the configured one. An empty configured secret disables the check.
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := c.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
