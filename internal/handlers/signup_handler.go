package handlers

import (
	"net/http"

	"brewshop/internal/models"
	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
)

type SignupHandler struct {
	signups services.SignupService
}

func NewSignupHandler(signups services.SignupService) *SignupHandler {
	return &SignupHandler{signups: signups}
}

type beerClubRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"max=15"`
	Address   string `json:"address"`
	Message   string `json:"message"`
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Phone   string `json:"phone" binding:"max=15"`
	Message string `json:"message" binding:"required"`
}

func (h *SignupHandler) BeerClubSignup(c *gin.Context) {
	var req beerClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	member := &models.BeerClubMember{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Message:   req.Message,
	}
	if err := h.signups.JoinBeerClub(c.Request.Context(), member); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *SignupHandler) ContactUs(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	message := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := h.signups.SubmitContactMessage(c.Request.Context(), message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}
