package postgres

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, nombre, email, password, rol, activo, foto_url, creado_en, actualizado_en`

type UserRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db DBPool, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger.With("component", "UserRepository")}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (created *user.User, err error) {
	start := time.Now()
	defer func() { observe("CreateUser", start, err) }()

	sql := `
        INSERT INTO usuarios (nombre, email, password, rol, activo, foto_url, creado_en, actualizado_en)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING ` + userColumns

	created, err = scanUser(r.db.QueryRow(ctx, sql, u.Name, u.Email, u.PasswordHash, u.Role, u.Active, u.PhotoURL))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert user", "email", u.Email, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return created, nil
}

func (r *UserRepository) findOne(ctx context.Context, op, where string, arg any) (u *user.User, err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()

	u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query user", "operation", op, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*user.User, error) {
	return r.findOne(ctx, "FindUserByID", "id = $1", userID)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "FindUserByEmail", "LOWER(email) = LOWER($1)", email)
}

func (r *UserRepository) list(ctx context.Context, op, query string, args ...any) (users []user.User, err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query users", "operation", op, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	users = make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return users, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	return r.list(ctx, "ListUsers", `SELECT `+userColumns+` FROM usuarios ORDER BY nombre`)
}

func (r *UserRepository) ListActiveByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	return r.list(ctx, "ListActiveUsersByRole",
		`SELECT `+userColumns+` FROM usuarios WHERE rol = $1 AND activo = TRUE ORDER BY nombre`, role)
}

func (r *UserRepository) Update(ctx context.Context, userID int64, patch user.UserPatch) (updated *user.User, err error) {
	start := time.Now()
	defer func() { observe("UpdateUser", start, err) }()

	var set setClause
	if patch.Name != nil {
		set.add("nombre", *patch.Name)
	}
	if patch.Email != nil {
		set.add("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		set.add("password", *patch.PasswordHash)
	}
	if patch.Role != nil {
		set.add("rol", *patch.Role)
	}
	if patch.Active != nil {
		set.add("activo", *patch.Active)
	}
	if patch.PhotoURL != nil {
		set.add("foto_url", *patch.PhotoURL)
	}
	if set.empty() {
		return r.FindByID(ctx, userID)
	}

	columns, args, idx := set.build(userID)
	sql := fmt.Sprintf(`UPDATE usuarios SET %s, actualizado_en = NOW() WHERE id = $%d RETURNING %s`, columns, idx, userColumns)

	updated, err = scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID int64) (err error) {
	start := time.Now()
	defer func() { observe("DeleteUser", start, err) }()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, userID)
	if err != nil {
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
