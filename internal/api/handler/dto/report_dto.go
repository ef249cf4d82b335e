package dto

import (
	"lending-engine/internal/domain/report"
	"time"
)

type LoanStatsResponse struct {
	Total             int64  `json:"total"`
	Active            int64  `json:"activos"`
	Completed         int64  `json:"completados"`
	Overdue           int64  `json:"vencidos"`
	Cancelled         int64  `json:"cancelados"`
	TotalLent         string `json:"total_prestado"`
	TotalWithInterest string `json:"total_con_interes"`
}

type CountAmountResponse struct {
	Count  int64  `json:"cantidad"`
	Amount string `json:"monto"`
}

type SummaryResponse struct {
	Loans        LoanStatsResponse   `json:"prestamos"`
	Pending      CountAmountResponse `json:"cuotas_pendientes"`
	MonthPayment CountAmountResponse `json:"pagos_mes"`
	Clients      struct {
		Total  int64 `json:"total"`
		Active int64 `json:"activos"`
	} `json:"clientes"`
	Users struct {
		Total      int64 `json:"total"`
		Active     int64 `json:"activos"`
		Admins     int64 `json:"administradores"`
		Collectors int64 `json:"cobradores"`
	} `json:"usuarios"`
	GeneratedAt time.Time `json:"generado_en"`
}

func NewSummaryResponse(s *report.Summary) SummaryResponse {
	resp := SummaryResponse{
		Loans: LoanStatsResponse{
			Total:             s.Loans.Total,
			Active:            s.Loans.Active,
			Completed:         s.Loans.Completed,
			Overdue:           s.Loans.Overdue,
			Cancelled:         s.Loans.Cancelled,
			TotalLent:         formatMoney(s.Loans.TotalLent),
			TotalWithInterest: formatMoney(s.Loans.TotalWithInterest),
		},
		Pending:      CountAmountResponse{Count: s.Pending.Count, Amount: formatMoney(s.Pending.Amount)},
		MonthPayment: CountAmountResponse{Count: s.MonthPayment.Count, Amount: formatMoney(s.MonthPayment.Collected)},
		GeneratedAt:  s.GeneratedAt,
	}
	resp.Clients.Total = s.Clients.Total
	resp.Clients.Active = s.Clients.Active
	resp.Users.Total = s.Users.Total
	resp.Users.Active = s.Users.Active
	resp.Users.Admins = s.Users.Admins
	resp.Users.Collectors = s.Users.Collectors
	return resp
}

type CollectorStatsResponse struct {
	CollectorID       string `json:"cobrador_id"`
	ClientCount       int64  `json:"total_clientes"`
	LoanCount         int64  `json:"total_prestamos"`
	TotalLent         string `json:"total_prestado"`
	TotalWithInterest string `json:"total_con_interes"`
	EstimatedEarnings string `json:"ganancia_estimada"`
}

func NewCollectorStatsResponse(s *report.CollectorStats) CollectorStatsResponse {
	return CollectorStatsResponse{
		CollectorID:       formatID(s.CollectorID),
		ClientCount:       s.ClientCount,
		LoanCount:         s.LoanCount,
		TotalLent:         formatMoney(s.TotalLent),
		TotalWithInterest: formatMoney(s.TotalWithInterest),
		EstimatedEarnings: formatMoney(s.EstimatedEarnings),
	}
}
