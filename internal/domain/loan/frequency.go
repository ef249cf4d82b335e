package loan

import (
	"fmt"
	"lending-engine/internal/pkg/apperrors"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "diario"
	FrequencyWeekly   Frequency = "semanal"
	FrequencyBiweekly Frequency = "quincenal"
	FrequencyMonthly  Frequency = "mensual"
)

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", unknownFrequency(s)
	}
	return f, nil
}

func unknownFrequency(tag string) error {
	return apperrors.NewValidationError("frecuencia_pago", fmt.Sprintf("unknown frequency %q", tag))
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// DueDate returns the due date of the installment at the zero-based index.
// Monthly offsets use calendar months, so a day that does not exist in the
// target month rolls over into the next one (Jan 31 + 1 month = Mar 2 or 3).
func (f Frequency) DueDate(start time.Time, index int) (time.Time, error) {
	switch f {
	case FrequencyDaily:
		return start.AddDate(0, 0, index), nil
	case FrequencyWeekly:
		return start.AddDate(0, 0, index*7), nil
	case FrequencyBiweekly:
		return start.AddDate(0, 0, index*15), nil
	case FrequencyMonthly:
		return start.AddDate(0, index, 0), nil
	default:
		return time.Time{}, unknownFrequency(string(f))
	}
}
