package loan

import (
	"lending-engine/internal/pkg/apperrors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequencyDueDate(t *testing.T) {
	start := date(2024, time.January, 1)

	tests := []struct {
		name  string
		freq  Frequency
		index int
		want  time.Time
	}{
		{"first installment falls on start", FrequencyMonthly, 0, start},
		{"daily", FrequencyDaily, 3, date(2024, time.January, 4)},
		{"weekly", FrequencyWeekly, 2, date(2024, time.January, 15)},
		{"biweekly is fifteen days", FrequencyBiweekly, 2, date(2024, time.January, 31)},
		{"monthly", FrequencyMonthly, 2, date(2024, time.March, 1)},
		{"daily crosses month", FrequencyDaily, 31, date(2024, time.February, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.freq.DueDate(start, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrequencyDueDateMonthEndRollsOver(t *testing.T) {
	start := date(2023, time.January, 31)
	got, err := FrequencyMonthly.DueDate(start, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.March, 3), got)
}

func TestFrequencyDueDateUnknownTag(t *testing.T) {
	_, err := Frequency("anual").DueDate(date(2024, 1, 1), 1)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorContains(t, err, "frecuencia_pago")
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Semanal ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)

	_, err = ParseFrequency("anual")
	assert.Error(t, err)
	assert.ErrorContains(t, err, "frecuencia_pago")
}
