package handlers

import (
	"log/slog"
	"net/http"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/services"
)

type AccountHandler struct {
	service   *services.AccountService
	validator *services.ValidationHelper
	logger    *slog.Logger
}

func NewAccountHandler(service *services.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// CreateAccountRequest is the body of POST /accounts
type CreateAccountRequest struct {
	AccountNumber string `json:"accountNumber" validate:"max=64" example:"ACC001"`
	Name          string `json:"name" validate:"max=200" example:"Alice Smith"`
}

// UpdateAccountRequest is the body of PUT /accounts/{id}
type UpdateAccountRequest struct {
	Name string `json:"name" validate:"max=200" example:"Alice Smith"`
}

// ListAccounts returns every account
// @Summary List accounts
// @Description List all accounts with their tickets, most recently created first
// @Tags Accounts
// @Produce json
// @Success 200 {array} models.Account
// @Failure 500 {object} services.ErrorResponse
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, accounts)
}

// GetAccount returns a single account
// @Summary Get account
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, account)
}

// CreateAccount registers a new account
// @Summary Create account
// @Description Account numbers are unique ignoring case
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account to create"
// @Success 201 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := h.service.Create(r.Context(), req.AccountNumber, req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusCreated, account)
}

// UpdateAccount renames an account
// @Summary Update account
// @Description Only the name can change; account number and tickets are untouched. An empty body clears the name.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body UpdateAccountRequest false "New name"
// @Success 200 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	account, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, account)
}

// DeleteAccount removes an account and releases its tickets
// @Summary Delete account
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	services.SendJSON(w, http.StatusOK, models.MessageResponse{Message: "Account deleted successfully"})
}
