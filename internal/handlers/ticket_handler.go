package handlers

import (
	"log/slog"
	"net/http"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/services"
)

type TicketHandler struct {
	service   *services.TicketService
	validator *services.ValidationHelper
	logger    *slog.Logger
}

func NewTicketHandler(service *services.TicketService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// AddTicketRequest is the body of POST /tickets
type AddTicketRequest struct {
	AccountID    string `json:"accountId" validate:"max=64" example:"3f6c2a4e-9a57-4a0e-8d7b-2b8e4b1f0c11"`
	TicketNumber string `json:"ticketNumber" validate:"max=64" example:"T1"`
}

// AddTicket attaches a ticket to an account
// @Summary Add ticket
// @Description Ticket values are unique across all accounts and compared exactly
// @Tags Tickets
// @Accept json
// @Produce json
// @Param request body AddTicketRequest true "Ticket to add"
// @Success 201 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /tickets [post]
func (h *TicketHandler) AddTicket(w http.ResponseWriter, r *http.Request) {
	var req AddTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := h.service.AddTicket(r.Context(), req.AccountID, req.TicketNumber)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusCreated, account)
}

// CheckTicket reports whether a ticket has been issued
// @Summary Check ticket
// @Tags Tickets
// @Produce json
// @Param ticketNumber path string true "Ticket number"
// @Success 200 {object} models.TicketCheckResult
// @Failure 500 {object} services.ErrorResponse
// @Router /tickets/check/{ticketNumber} [get]
func (h *TicketHandler) CheckTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber, ok := pathParam(w, r, "ticketNumber")
	if !ok {
		return
	}

	result, err := h.service.CheckTicket(r.Context(), ticketNumber)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, result)
}

// RemoveTicket detaches a ticket from an account
// @Summary Remove ticket
// @Tags Tickets
// @Produce json
// @Param accountId path string true "Account ID"
// @Param ticketNumber path string true "Ticket number"
// @Success 200 {object} models.TicketRemovalResult
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /tickets/{accountId}/{ticketNumber} [delete]
func (h *TicketHandler) RemoveTicket(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathParam(w, r, "accountId")
	if !ok {
		return
	}
	ticketNumber, ok := pathParam(w, r, "ticketNumber")
	if !ok {
		return
	}

	account, err := h.service.RemoveTicket(r.Context(), accountID, ticketNumber)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, models.TicketRemovalResult{
		Message: "Ticket removed successfully",
		Account: account,
	})
}
