package handlers

import (
	"errors"
	"net/http"

	"brewshop/internal/middleware"
	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type recoverPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type changeRecoverPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type profileRequest struct {
	FirstName     *string `json:"first_name" binding:"omitempty,max=150"`
	LastName      *string `json:"last_name" binding:"omitempty,max=150"`
	BusinessName  *string `json:"business_name" binding:"omitempty,max=255"`
	BusinessType  *string `json:"business_type" binding:"omitempty,max=100"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=100"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Address       *string `json:"address"`
}

type verifyRequest struct {
	IsVerified *bool `json:"is_verified"`
}

// envelope is the response shape of the registration and login endpoints.
func envelope(message string, body interface{}) gin.H {
	return gin.H{
		"success":       true,
		"message":       message,
		"errors":        gin.H{},
		"response_body": body,
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"statusCode": http.StatusBadRequest, "message": message})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	_, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data provided.", "details": gin.H{"email": err.Error()}})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope("User Registered Successfully", nil))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, services.ErrInvalidCredentials.Error())
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAccountNotVerified) {
			badRequest(c, err.Error())
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope("User Logged Successfully", gin.H{
		"token":    result.Token,
		"username": result.User.Email,
		"first":    result.User.FirstName,
		"last":     result.User.LastName,
		"expires":  result.Expires,
		"id":       result.User.ID,
	}))
}

func (h *UserHandler) ObtainToken(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	pair, err := h.users.ObtainTokenPair(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	access, err := h.users.RefreshAccess(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *UserHandler) RecoverPassword(c *gin.Context) {
	var req recoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.users.RequestRecovery(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a recovery code has been sent."})
}

func (h *UserHandler) ChangeRecoverPassword(c *gin.Context) {
	var req changeRecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	err := h.users.RecoverPassword(c.Request.Context(), req.Username, req.Token, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	user, err := h.users.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), claims.UserID, services.ProfileInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		BusinessName:  req.BusinessName,
		BusinessType:  req.BusinessType,
		LicenseNumber: req.LicenseNumber,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// VerifyUser lets staff flip the verification flag, true by default.
func (h *UserHandler) VerifyUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req verifyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	verified := true
	if req.IsVerified != nil {
		verified = *req.IsVerified
	}

	user, err := h.users.SetVerified(c.Request.Context(), id, verified)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
