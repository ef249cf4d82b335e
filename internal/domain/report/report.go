package report

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStats struct {
	Total             int64           `json:"total"`
	Active            int64           `json:"active"`
	Completed         int64           `json:"completed"`
	Overdue           int64           `json:"overdue"`
	Cancelled         int64           `json:"cancelled"`
	TotalLent         decimal.Decimal `json:"totalLent"`
	TotalWithInterest decimal.Decimal `json:"totalWithInterest"`
}

type PendingStats struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentStats struct {
	Count     int64           `json:"count"`
	Collected decimal.Decimal `json:"collected"`
}

type ClientStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type UserStats struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Admins     int64 `json:"admins"`
	Collectors int64 `json:"collectors"`
}

// Summary is the portfolio overview shown to administrators.
type Summary struct {
	Loans        LoanStats    `json:"loans"`
	Pending      PendingStats `json:"pending"`
	MonthPayment PaymentStats `json:"monthPayments"`
	Clients      ClientStats  `json:"clients"`
	Users        UserStats    `json:"users"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

// CollectorStats covers the clients a collector registered and the loans assigned to or created by them.
type CollectorStats struct {
	CollectorID       int64           `json:"collectorId"`
	ClientCount       int64           `json:"clientCount"`
	LoanCount         int64           `json:"loanCount"`
	TotalLent         decimal.Decimal `json:"totalLent"`
	TotalWithInterest decimal.Decimal `json:"totalWithInterest"`
	EstimatedEarnings decimal.Decimal `json:"estimatedEarnings"`
}

// MonthStart returns midnight of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
