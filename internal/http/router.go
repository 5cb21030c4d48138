// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mensa/internal/http/handlers"
	"mensa/internal/http/middleware"
	"mensa/internal/modules/cart"
)

type RouterDeps struct {
	Tickets       handlers.TicketService
	Cart          *cart.Cart
	Resolver      handlers.Resolver
	Profiles      handlers.ProfileStore
	WebhookSecret string
	Log           *logrus.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	ticketHandler := handlers.NewTicketHandler(deps.Tickets)
	r.POST("/api/tickets", ticketHandler.Create)
	r.POST("/api/tickets/:id/cancel", ticketHandler.Cancel)
	r.POST("/api/tickets/:id/next", ticketHandler.Next)
	r.POST("/api/tickets/:id/confirm", ticketHandler.Confirm)

	cartHandler := handlers.NewCartHandler(deps.Cart, deps.Resolver)
	r.POST("/api/cart/items", cartHandler.Add)
	r.GET("/api/cart/:customer", cartHandler.Get)
	r.DELETE("/api/cart/:customer", cartHandler.Clear)

	profileHandler := handlers.NewProfileHandler(deps.Profiles)
	r.PUT("/api/profiles/:customer", profileHandler.Put)
	r.GET("/api/profiles/:customer", profileHandler.Get)
	r.DELETE("/api/profiles/:customer", profileHandler.Delete)

	webhookHandler := handlers.NewWebhookHandler(deps.Tickets, deps.Log)
	r.POST("/telegram/webhook", middleware.WebhookAuth(deps.WebhookSecret), webhookHandler.Handle)

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	return r
}
