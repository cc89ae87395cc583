package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emocare/emocare-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userMsg, botMsg, suggestions, err := ch.chatService.SendMessage(c.Request.Context(), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_message": userMsg,
		"bot_message":  botMsg,
		"suggestions":  suggestions,
	})
}

func (ch *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := ch.chatService.ListMessages(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
