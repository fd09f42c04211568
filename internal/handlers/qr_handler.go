package handlers

import (
	"log/slog"
	"net/http"

	"github.com/luckydraw/backend/internal/services"
)

type QRHandler struct {
	service *services.TicketService
	logger  *slog.Logger
}

func NewQRHandler(service *services.TicketService, logger *slog.Logger) *QRHandler {
	return &QRHandler{
		service: service,
		logger:  logger,
	}
}

// TicketQR renders an issued ticket as a QR code
// @Summary Ticket QR code
// @Description Base64 encoded PNG whose payload names the ticket and its account
// @Tags Tickets
// @Produce json
// @Param ticketNumber path string true "Ticket number"
// @Success 200 {object} models.TicketQRCode
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /tickets/{ticketNumber}/qr [get]
func (h *QRHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	ticketNumber, ok := pathParam(w, r, "ticketNumber")
	if !ok {
		return
	}

	qr, err := h.service.TicketQR(r.Context(), ticketNumber)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, qr)
}
