package handler

import (
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/client"
	"lending-engine/internal/domain/loan"
	"log/slog"
	"net/http"
)

type ClientHandler struct {
	service client.ClientService
	loans   loan.LoanService
	logger  *slog.Logger
}

func NewClientHandler(s client.ClientService, loans loan.LoanService, l *slog.Logger) *ClientHandler {
	return &ClientHandler{
		service: s,
		loans:   loans,
		logger:  l.With("component", "ClientHandler"),
	}
}

// ListClients lists active clients. Collectors only see the clients they registered.
//
// @Summary List clients
// @Tags Clients
// @Produce json
// @Success 200 {array} dto.ClientResponse
// @Router /clients [get]
// @Security BearerAuth
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	clients, err := h.service.ListClients(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewClientListResponse(clients))
}

// CreateClient
//
// @Summary Register a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body dto.CreateClientRequest true "New client"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Duplicate cedula"
// @Router /clients [post]
// @Security BearerAuth
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateClientRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.service.CreateClient(r.Context(), req.ToClient(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewClientResponse(created))
}

// GetClient
//
// @Summary Get a client
// @Tags Clients
// @Produce json
// @Param clientID path int true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /clients/{clientID} [get]
// @Security BearerAuth
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "clientID")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.service.GetClient(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewClientResponse(c))
}

// UpdateClient
//
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param clientID path int true "Client ID"
// @Param request body dto.UpdateClientRequest true "Fields to change"
// @Success 200 {object} dto.ClientResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /clients/{clientID} [put]
// @Security BearerAuth
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "clientID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateClientRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateClient(r.Context(), clientID, req.ToPatch(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewClientResponse(updated))
}

// DeleteClient
//
// @Summary Delete a client
// @Description Refused while the client still has open loans.
// @Tags Clients
// @Param clientID path int true "Client ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /clients/{clientID} [delete]
// @Security BearerAuth
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "clientID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteClient(r.Context(), clientID, actor); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPendingInstallments lists the unpaid installments of a client's open loans, oldest due first.
//
// @Summary Pending installments of a client
// @Tags Clients
// @Produce json
// @Param clientID path int true "Client ID"
// @Success 200 {array} dto.PendingInstallmentResponse
// @Router /clients/{clientID}/pending-installments [get]
// @Security BearerAuth
func (h *ClientHandler) ListPendingInstallments(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseIDParam(r, "clientID")
	if err != nil {
		respondError(w, err)
		return
	}
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	rows, err := h.loans.ListPendingInstallments(r.Context(), clientID, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewPendingInstallmentsResponse(rows))
}

// ListClientsWithPending
//
// @Summary Clients with pending installments
// @Tags Clients
// @Produce json
// @Success 200 {array} dto.ClientWithPendingResponse
// @Router /clients/pending [get]
// @Security BearerAuth
func (h *ClientHandler) ListClientsWithPending(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	rows, err := h.loans.ListClientsWithPending(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewClientsWithPendingResponse(rows))
}
