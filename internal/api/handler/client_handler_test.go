package handler

import (
	"encoding/json"
	"fmt"
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/domain/client"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/pkg/apperrors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClientHandlerCreateClient(t *testing.T) {
	clients := new(MockClientService)
	h := NewClientHandler(clients, new(MockLoanService), testLogger)

	clients.On("CreateClient", mock.Anything, mock.MatchedBy(func(c *client.Client) bool {
		return c.FirstName == "Maria" && c.NationalID == "001-1234567-8"
	}), collectorActor).Return(&client.Client{ID: 3, FirstName: "Maria", LastName: "Perez", NationalID: "001-1234567-8", Active: true, CreatedBy: 7}, nil)

	rec := httptest.NewRecorder()
	body := `{"nombre":"Maria","apellido":"Perez","cedula":"001-1234567-8","telefono":"809-555-0101"}`
	h.CreateClient(rec, newRequest(http.MethodPost, "/clients", body, nil, &collectorActor))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.ClientResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Maria Perez", resp.FullName)
	assert.Equal(t, "7", resp.CreatedBy)
	clients.AssertExpectations(t)
}

func TestClientHandlerValidation(t *testing.T) {
	h := NewClientHandler(new(MockClientService), new(MockLoanService), testLogger)

	rec := httptest.NewRecorder()
	h.CreateClient(rec, newRequest(http.MethodPost, "/clients", `{"nombre":"Maria"}`, nil, &adminActor))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cedula", decodeError(t, rec).Field)
}

func TestClientHandlerDeleteWithOpenLoans(t *testing.T) {
	clients := new(MockClientService)
	h := NewClientHandler(clients, new(MockLoanService), testLogger)
	clients.On("DeleteClient", mock.Anything, int64(3), adminActor).
		Return(fmt.Errorf("%w: client 3 has 1 open loans", apperrors.ErrConflict))

	rec := httptest.NewRecorder()
	h.DeleteClient(rec, newRequest(http.MethodDelete, "/clients/3", nil, map[string]string{"clientID": "3"}, &adminActor))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, rec).Code)
}

func TestClientHandlerPendingInstallments(t *testing.T) {
	loans := new(MockLoanService)
	h := NewClientHandler(new(MockClientService), loans, testLogger)
	phone := "809-555-0101"
	loans.On("ListPendingInstallments", mock.Anything, int64(3), collectorActor).Return([]loan.PendingInstallment{
		{
			Installment: loan.Installment{
				ID: 100, LoanID: 42, Number: 2,
				DueDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
				Amount:  dec("110"), PaidAmount: dec("10"), State: loan.InstallmentOverdue,
			},
			ClientID: 3, ClientFirstName: "Maria", ClientLastName: "Perez", ClientPhone: &phone,
			LoanPrincipal: dec("1000"),
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.ListPendingInstallments(rec, newRequest(http.MethodGet, "/clients/3/pending-installments", nil, map[string]string{"clientID": "3"}, &collectorActor))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.PendingInstallmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Maria Perez", resp[0].ClientName)
	assert.Equal(t, "100.00", resp[0].Pending)
	assert.Equal(t, loan.DisplayPartial, resp[0].State)
	loans.AssertExpectations(t)
}

func TestClientHandlerClientsWithPending(t *testing.T) {
	loans := new(MockLoanService)
	h := NewClientHandler(new(MockClientService), loans, testLogger)
	loans.On("ListClientsWithPending", mock.Anything, adminActor).Return([]loan.ClientWithPending{
		{ClientID: 3, FirstName: "Maria", NationalID: "001", LoanCount: 1, PendingCount: 4, PendingAmount: dec("440")},
	}, nil)

	rec := httptest.NewRecorder()
	h.ListClientsWithPending(rec, newRequest(http.MethodGet, "/clients/pending", nil, nil, &adminActor))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.ClientWithPendingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "440.00", resp[0].PendingAmount)
}
