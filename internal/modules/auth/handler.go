package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toyrental/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	// is_admin is set by the auth middleware when a valid token is
	// present; anonymous callers can only bootstrap the first account.
	actingAdmin := c.GetBool("is_admin")

	user, err := h.service.Register(c.Request.Context(), RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, actingAdmin)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Username, email and a password of at least 6 characters are required")
		case ErrUserAlreadyExists:
			response.Error(c, http.StatusConflict, "USER_EXISTS", "Username or email already taken")
		case ErrRegistrationClosed:
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Registration requires an administrator")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if err == ErrInvalidCredentials {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}
