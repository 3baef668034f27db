package equipment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"toyrental/internal/domain"
	"toyrental/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createEquipmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/equipment", h.List)
	rg.GET("/equipment/:id", h.Get)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/equipment", h.Create)
	rg.PATCH("/equipment/:id/status", h.SetStatus)
	rg.DELETE("/equipment/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.Create(c.Request.Context(), CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.EquipmentStatus(req.Status),
	})
	if err != nil {
		if err == ErrValidation {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid equipment data")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create equipment")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"equipment": e})
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list equipment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid equipment ID")
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == ErrNotFound {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Equipment not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load equipment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid equipment ID")
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.SetStatus(c.Request.Context(), id, domain.EquipmentStatus(req.Status))
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be available or maintenance")
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Equipment not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update status")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid equipment ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Equipment not found")
		case ErrHasReservations:
			response.Error(c, http.StatusConflict, "EQUIPMENT_IN_USE", "Equipment has associated reservations")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete equipment")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
