package handlers

import (
	"net/http"
	"strings"

	"food_ordering/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// WhatsAppHandler lets staff message a guest directly, for example when an
// order needs a follow-up call.
type WhatsAppHandler struct {
	sender services.MessageSender
}

// NewWhatsAppHandler accepts a nil sender; SendMessage then answers 503.
func NewWhatsAppHandler(sender services.MessageSender) *WhatsAppHandler {
	return &WhatsAppHandler{sender: sender}
}

type SendMessageRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *WhatsAppHandler) Register(admin *gin.RouterGroup) {
	admin.POST("/whatsapp/send-message", h.SendMessage)
}

func (h *WhatsAppHandler) SendMessage(c *gin.Context) {
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp messaging is not configured"})
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		badRequest(c)
		return
	}

	if err := h.sender.SendTextMessage(c.Request.Context(), req.Phone, req.Message); err != nil {
		log.Error().Err(err).Str("phone", req.Phone).Msg("failed to send whatsapp message")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
