package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emocare/emocare-backend/internal/services"
)

type PsychologistHandler struct {
	userService services.UserService
}

func NewPsychologistHandler(userService services.UserService) *PsychologistHandler {
	return &PsychologistHandler{userService: userService}
}

// List is public: browsing psychologists requires no session.
func (ph *PsychologistHandler) List(c *gin.Context) {
	psychologists, err := ph.userService.ListPsychologists(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"psychologists": psychologists})
}
