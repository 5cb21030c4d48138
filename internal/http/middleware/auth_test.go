// README: Webhook-secret middleware tests.
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"mensa/internal/http/middleware"
)

func buildGuarded(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hook", middleware.WebhookAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func hit(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	if token != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestWebhookAuth(t *testing.T) {
	r := buildGuarded("s3cret")
	if got := hit(r, "s3cret"); got != http.StatusOK {
		t.Errorf("matching secret: %d", got)
	}
	if got := hit(r, "wrong"); got != http.StatusUnauthorized {
		t.Errorf("wrong secret: %d", got)
	}
	if got := hit(r, ""); got != http.StatusUnauthorized {
		t.Errorf("missing secret: %d", got)
	}
}

func TestWebhookAuthDisabled(t *testing.T) {
	r := buildGuarded("")
	if got := hit(r, ""); got != http.StatusOK {
		t.Errorf("unconfigured secret must pass: %d", got)
	}
}
