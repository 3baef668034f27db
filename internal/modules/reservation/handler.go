package reservation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"toyrental/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reservations", h.List)
	rg.GET("/reservations/:id", h.Get)
	rg.POST("/reservations", h.Create)
	rg.POST("/reservations/:id/finalize", h.Finalize)
	rg.GET("/equipment/:id/availability", h.Availability)
}

// RegisterAdminRoutes mounts the destructive paths; the caller wraps the
// group with the admin middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/reservations/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	result, err := h.service.Create(c.Request.Context(), CreateRequest{
		EquipmentID:   req.EquipmentID,
		ClientName:    req.ClientName,
		ClientContact: req.ClientContact,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation data")
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Equipment not found")
		case ErrMaintenance:
			response.Error(c, http.StatusConflict, "EQUIPMENT_MAINTENANCE", "Equipment is under maintenance")
		case ErrConflict:
			response.Error(c, http.StatusConflict, "RESERVATION_CONFLICT", "Equipment is already reserved for the requested period")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create reservation")
		}
		return
	}

	data := gin.H{"reservation": toResponse(result.Reservation)}
	if result.NotificationErr != nil {
		response.SuccessWithWarning(c, http.StatusCreated, data, "confirmation email could not be sent")
		return
	}
	response.Success(c, http.StatusCreated, data)
}

func (h *Handler) Availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid equipment ID")
		return
	}

	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid start, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid end, expected YYYY-MM-DD")
		return
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), id, start, end)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "start must not be after end")
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Equipment not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check availability")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"available": available})
}

func (h *Handler) List(c *gin.Context) {
	reservations, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reservations")
		return
	}

	out := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, toResponse(&reservations[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == ErrNotFound {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load reservation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": toResponse(res)})
}

func (h *Handler) Finalize(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return
	}

	res, err := h.service.Finalize(c.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
		case ErrAlreadyFinalized:
			response.Error(c, http.StatusConflict, "ALREADY_FINALIZED", "Reservation is already finalized")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to finalize reservation")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": toResponse(res)})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if err == ErrNotFound {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete reservation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
