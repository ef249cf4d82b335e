package postgres

import (
	"context"
	"errors"
	"lending-engine/internal/domain/setting"
	"lending-engine/internal/pkg/apperrors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingRowColumns = []string{"clave", "valor", "actualizado_en"}

func newSettingRepo(t *testing.T) (pgxmock.PgxPoolIface, *SettingRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewSettingRepository(mock, logger)
}

func TestSettingRepository_List(t *testing.T) {
	mock, repo := newSettingRepo(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM configuracion ORDER BY clave").
		WillReturnRows(mock.NewRows(settingRowColumns).
			AddRow(setting.KeyCompanyLogo, "https://cdn.example.com/logo.png", now).
			AddRow(setting.KeyCompanyName, "Prestamos RD", now))

	settings, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "Prestamos RD", settings[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepository_FindByKey(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		mock, repo := newSettingRepo(t)
		mock.ExpectQuery("FROM configuracion WHERE clave").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByKey(context.Background(), "missing")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock, repo := newSettingRepo(t)
		mock.ExpectQuery("FROM configuracion WHERE clave").WithArgs(setting.KeyCompanyName).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByKey(context.Background(), setting.KeyCompanyName)

		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestSettingRepository_Upsert(t *testing.T) {
	mock, repo := newSettingRepo(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO configuracion(.+)ON CONFLICT \(clave\) DO UPDATE`).
		WithArgs(setting.KeyCompanyName, "Acme").
		WillReturnRows(mock.NewRows(settingRowColumns).AddRow(setting.KeyCompanyName, "Acme", now))

	s, err := repo.Upsert(context.Background(), setting.KeyCompanyName, "Acme")

	require.NoError(t, err)
	assert.Equal(t, "Acme", s.Value)
	assert.Equal(t, now, s.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
