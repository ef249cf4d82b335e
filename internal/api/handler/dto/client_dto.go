package dto

import (
	"lending-engine/internal/domain/client"
	"lending-engine/internal/domain/loan"
	"time"
)

type CreateClientRequest struct {
	FirstName  string  `json:"nombre" validate:"required"`
	LastName   string  `json:"apellido"`
	NationalID string  `json:"cedula" validate:"required"`
	Phone      *string `json:"telefono"`
	Address    *string `json:"direccion"`
	Email      *string `json:"email" validate:"omitempty,email"`
	PhotoURL   *string `json:"foto_url"`
}

func (r *CreateClientRequest) ToClient() *client.Client {
	return &client.Client{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		NationalID: r.NationalID,
		Phone:      r.Phone,
		Address:    r.Address,
		Email:      r.Email,
		PhotoURL:   r.PhotoURL,
	}
}

type UpdateClientRequest struct {
	FirstName  *string `json:"nombre" validate:"omitempty,min=1"`
	LastName   *string `json:"apellido"`
	NationalID *string `json:"cedula" validate:"omitempty,min=1"`
	Phone      *string `json:"telefono"`
	Address    *string `json:"direccion"`
	Email      *string `json:"email" validate:"omitempty,email"`
	PhotoURL   *string `json:"foto_url"`
	Active     *bool   `json:"activo"`
}

func (r *UpdateClientRequest) ToPatch() client.ClientPatch {
	return client.ClientPatch{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		NationalID: r.NationalID,
		Phone:      r.Phone,
		Address:    r.Address,
		Email:      r.Email,
		PhotoURL:   r.PhotoURL,
		Active:     r.Active,
	}
}

type ClientResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"nombre"`
	LastName   string    `json:"apellido"`
	FullName   string    `json:"nombre_completo"`
	NationalID string    `json:"cedula"`
	Phone      *string   `json:"telefono,omitempty"`
	Address    *string   `json:"direccion,omitempty"`
	Email      *string   `json:"email,omitempty"`
	PhotoURL   *string   `json:"foto_url,omitempty"`
	Active     bool      `json:"activo"`
	CreatedBy  string    `json:"creado_por"`
	CreatedAt  time.Time `json:"creado_en"`
	UpdatedAt  time.Time `json:"actualizado_en"`
}

func NewClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:         formatID(c.ID),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName(),
		NationalID: c.NationalID,
		Phone:      c.Phone,
		Address:    c.Address,
		Email:      c.Email,
		PhotoURL:   c.PhotoURL,
		Active:     c.Active,
		CreatedBy:  formatID(c.CreatedBy),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func NewClientListResponse(clients []client.Client) []ClientResponse {
	resp := make([]ClientResponse, len(clients))
	for i := range clients {
		resp[i] = NewClientResponse(&clients[i])
	}
	return resp
}

type ClientWithPendingResponse struct {
	ClientID      string  `json:"cliente_id"`
	FirstName     string  `json:"nombre"`
	LastName      string  `json:"apellido"`
	NationalID    string  `json:"cedula"`
	Phone         *string `json:"telefono,omitempty"`
	Address       *string `json:"direccion,omitempty"`
	LoanCount     int     `json:"total_prestamos"`
	PendingCount  int     `json:"cuotas_pendientes"`
	PendingAmount string  `json:"monto_pendiente"`
}

func NewClientsWithPendingResponse(rows []loan.ClientWithPending) []ClientWithPendingResponse {
	resp := make([]ClientWithPendingResponse, len(rows))
	for i, c := range rows {
		resp[i] = ClientWithPendingResponse{
			ClientID:      formatID(c.ClientID),
			FirstName:     c.FirstName,
			LastName:      c.LastName,
			NationalID:    c.NationalID,
			Phone:         c.Phone,
			Address:       c.Address,
			LoanCount:     c.LoanCount,
			PendingCount:  c.PendingCount,
			PendingAmount: formatMoney(c.PendingAmount),
		}
	}
	return resp
}

type PendingInstallmentResponse struct {
	InstallmentResponse
	ClientID      string  `json:"cliente_id"`
	ClientName    string  `json:"cliente_nombre"`
	ClientPhone   *string `json:"cliente_telefono,omitempty"`
	ClientAddress *string `json:"cliente_direccion,omitempty"`
	LoanPrincipal string  `json:"monto_prestado"`
}

func NewPendingInstallmentsResponse(rows []loan.PendingInstallment) []PendingInstallmentResponse {
	resp := make([]PendingInstallmentResponse, len(rows))
	for i := range rows {
		p := &rows[i]
		name := p.ClientFirstName
		if p.ClientLastName != "" {
			name += " " + p.ClientLastName
		}
		resp[i] = PendingInstallmentResponse{
			InstallmentResponse: NewInstallmentResponse(&p.Installment),
			ClientID:            formatID(p.ClientID),
			ClientName:          name,
			ClientPhone:         p.ClientPhone,
			ClientAddress:       p.ClientAddress,
			LoanPrincipal:       formatMoney(p.LoanPrincipal),
		}
	}
	return resp
}
