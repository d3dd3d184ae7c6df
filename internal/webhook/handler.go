package webhook

import (
	"log"
	"net/http"

	"worklog-bot/internal/dispatch"
	"worklog-bot/internal/logger"
	"worklog-bot/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	dispatcher  *dispatch.Dispatcher
	verifyToken string
}

func NewHandler(
	dispatcher *dispatch.Dispatcher,
	verifyToken string,
) *Handler {
	return &Handler{
		dispatcher:  dispatcher,
		verifyToken: verifyToken,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/webhook", h.verify)
	r.POST("/webhook", h.receive)

	for _, route := range r.Routes() {
		log.Printf("[ROUTE] %s %s", route.Method, route.Path)
	}
}

// verify answers the subscription handshake. The platform sends a
// challenge that must be echoed back verbatim as plain text.
func (h *Handler) verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		logger.Warn("webhook verification rejected", map[string]any{
			"mode": mode,
			"ip":   c.ClientIP(),
		})
		c.JSON(http.StatusForbidden, gin.H{
			"error": "verification failed",
		})
		return
	}

	log.Printf("[VERIFY] webhook subscription confirmed ip=%s", c.ClientIP())
	c.String(http.StatusOK, challenge)
}

// receive ingests one delivery batch. Anything other than a 2xx makes
// the platform re-deliver the same batch, so malformed payloads are
// logged and acknowledged instead of rejected.
func (h *Handler) receive(c *gin.Context) {
	var env whatsapp.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		logger.Warn("webhook payload rejected", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	for _, msg := range env.Messages() {
		h.dispatcher.Handle(c.Request.Context(), msg)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
