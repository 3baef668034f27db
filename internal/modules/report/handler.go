package report

import (
	"net/http"
	"strconv"

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
	rg.GET("/reports/reservations.pdf", h.Reservations)
	rg.GET("/reports/equipment.pdf", h.Equipment)
	rg.GET("/reservations/:id/voucher.pdf", h.Voucher)
}

func (h *Handler) Reservations(c *gin.Context) {
	pdf, err := h.service.ReservationsPDF(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render report")
		return
	}
	servePDF(c, "reservations.pdf", pdf)
}

func (h *Handler) Equipment(c *gin.Context) {
	pdf, err := h.service.EquipmentPDF(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render report")
		return
	}
	servePDF(c, "equipment.pdf", pdf)
}

func (h *Handler) Voucher(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return
	}

	pdf, err := h.service.VoucherPDF(c.Request.Context(), id)
	if err != nil {
		if err == ErrNotFound {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render voucher")
		return
	}
	servePDF(c, "voucher.pdf", pdf)
}

func servePDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
