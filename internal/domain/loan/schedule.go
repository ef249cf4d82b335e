package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateSchedule lays out count installments of the same nominal amount.
// Installment n is due at freq.DueDate(start, n-1), so the first one falls on start.
// An unknown frequency yields a validation error and no schedule.
func GenerateSchedule(loanID int64, start time.Time, count int, freq Frequency, amount decimal.Decimal) ([]Installment, error) {
	schedule := make([]Installment, 0, count)
	for n := 1; n <= count; n++ {
		due, err := freq.DueDate(start, n-1)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, Installment{
			LoanID:     loanID,
			Number:     n,
			DueDate:    due,
			Amount:     amount,
			PaidAmount: decimal.Zero,
			State:      InstallmentPending,
		})
	}
	return schedule, nil
}

// ScheduleTotal sums the nominal amounts of a schedule.
func ScheduleTotal(schedule []Installment) decimal.Decimal {
	total := decimal.Zero
	for i := range schedule {
		total = total.Add(schedule[i].Amount)
	}
	return total
}
