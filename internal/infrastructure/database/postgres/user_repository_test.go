package postgres

import (
	"context"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "nombre", "email", "password", "rol", "activo", "foto_url", "creado_en", "actualizado_en"}

func newUserRepo(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock, logger)
}

func userRow(rows *pgxmock.Rows, id int64, role user.Role) *pgxmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "Carlos", "carlos@example.com", "$2a$10$hash", role, true, (*string)(nil), now, now)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("matches case insensitively", func(t *testing.T) {
		mock, repo := newUserRepo(t)
		mock.ExpectQuery("FROM usuarios WHERE LOWER\\(email\\) = LOWER\\(\\$1\\)").
			WithArgs("Carlos@Example.com").
			WillReturnRows(userRow(mock.NewRows(userRowColumns), 3, user.RoleCollector))

		u, err := repo.FindByEmail(ctx, "Carlos@Example.com")

		require.NoError(t, err)
		assert.True(t, u.IsActiveCollector())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email", func(t *testing.T) {
		mock, repo := newUserRepo(t)
		mock.ExpectQuery("FROM usuarios").WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByEmail(ctx, "nobody@example.com")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserRepository_ListActiveByRole(t *testing.T) {
	ctx := context.Background()
	mock, repo := newUserRepo(t)
	mock.ExpectQuery("WHERE rol = \\$1 AND activo = TRUE").
		WithArgs(user.RoleCollector).
		WillReturnRows(userRow(userRow(mock.NewRows(userRowColumns), 3, user.RoleCollector), 4, user.RoleCollector))

	users, err := repo.ListActiveByRole(ctx, user.RoleCollector)

	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock, repo := newUserRepo(t)
	role := user.RoleAdmin

	mock.ExpectQuery("UPDATE usuarios SET rol = \\$1, actualizado_en = NOW\\(\\) WHERE id = \\$2").
		WithArgs(user.RoleAdmin, int64(3)).
		WillReturnRows(userRow(mock.NewRows(userRowColumns), 3, user.RoleAdmin))

	u, err := repo.Update(ctx, 3, user.UserPatch{Role: &role})

	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	mock, repo := newUserRepo(t)
	mock.ExpectExec("DELETE FROM usuarios").WithArgs(int64(9)).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(ctx, 9), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
