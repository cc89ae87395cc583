package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emocare/emocare-backend/internal/services"
)

type EmotionHandler struct {
	emotionService services.EmotionService
}

func NewEmotionHandler(emotionService services.EmotionService) *EmotionHandler {
	return &EmotionHandler{emotionService: emotionService}
}

func (eh *EmotionHandler) Create(c *gin.Context) {
	var req struct {
		Level int    `json:"level"`
		Note  string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := eh.emotionService.CreateEntry(c.Request.Context(), req.Level, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (eh *EmotionHandler) List(c *gin.Context) {
	entries, err := eh.emotionService.ListEntries(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (eh *EmotionHandler) Stats(c *gin.Context) {
	stats, err := eh.emotionService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
