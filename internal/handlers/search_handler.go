package handlers

import (
	"log/slog"
	"net/http"

	"github.com/luckydraw/backend/internal/services"
)

type SearchHandler struct {
	service *services.SearchService
	logger  *slog.Logger
}

func NewSearchHandler(service *services.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger,
	}
}

// SearchByTicket finds the account holding a ticket
// @Summary Search by ticket
// @Tags Search
// @Produce json
// @Param ticketNumber path string true "Ticket number"
// @Success 200 {object} models.TicketSearchResult
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /search/ticket/{ticketNumber} [get]
func (h *SearchHandler) SearchByTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber, ok := pathParam(w, r, "ticketNumber")
	if !ok {
		return
	}

	result, err := h.service.FindByTicket(r.Context(), ticketNumber)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, result)
}

// SearchByAccountNumber finds an account by number, ignoring case
// @Summary Search by account number
// @Tags Search
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} models.AccountSearchResult
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /search/account/{accountNumber} [get]
func (h *SearchHandler) SearchByAccountNumber(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := pathParam(w, r, "accountNumber")
	if !ok {
		return
	}

	result, err := h.service.FindByAccountNumber(r.Context(), accountNumber)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, result)
}
