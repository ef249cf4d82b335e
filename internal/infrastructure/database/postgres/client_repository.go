package postgres

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/domain/client"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, nombre, apellido, cedula, telefono, direccion, email, foto_url, activo, creado_por, creado_en, actualizado_en`

type ClientRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ client.Repository = (*ClientRepository)(nil)

func NewClientRepository(db DBPool, logger *slog.Logger) *ClientRepository {
	if db == nil {
		panic("DBPool cannot be nil for ClientRepository")
	}
	return &ClientRepository{
		db:     db,
		logger: logger.With("component", "ClientRepository"),
	}
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.NationalID, &c.Phone, &c.Address, &c.Email, &c.PhotoURL,
		&c.Active, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) (created *client.Client, err error) {
	start := time.Now()
	defer func() { observe("CreateClient", start, err) }()

	sql := `
        INSERT INTO clientes (nombre, apellido, cedula, telefono, direccion, email, foto_url, activo, creado_por, creado_en, actualizado_en)
        VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, NOW(), NOW())
        RETURNING ` + clientColumns

	created, err = scanClient(r.db.QueryRow(ctx, sql,
		c.FirstName, c.LastName, c.NationalID, c.Phone, c.Address, c.Email, c.PhotoURL, c.CreatedBy,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert client", "national_id", c.NationalID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Client created in DB", "client_id", created.ID)
	return created, nil
}

func (r *ClientRepository) findOne(ctx context.Context, op, where string, arg any) (c *client.Client, err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()

	c, err = scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clientes WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query client", "operation", op, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return c, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, clientID int64) (*client.Client, error) {
	return r.findOne(ctx, "FindClientByID", "id = $1", clientID)
}

func (r *ClientRepository) FindByNationalID(ctx context.Context, nationalID string) (*client.Client, error) {
	return r.findOne(ctx, "FindClientByNationalID", "cedula = $1", nationalID)
}

func (r *ClientRepository) List(ctx context.Context, createdBy *int64) (clients []client.Client, err error) {
	start := time.Now()
	defer func() { observe("ListClients", start, err) }()

	query := `SELECT ` + clientColumns + ` FROM clientes WHERE activo = TRUE`
	var args []any
	if createdBy != nil {
		query += ` AND creado_por = $1`
		args = append(args, *createdBy)
	}
	query += ` ORDER BY nombre, apellido`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query clients", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	clients = make([]client.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan client row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		clients = append(clients, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, clientID int64, patch client.ClientPatch) (updated *client.Client, err error) {
	start := time.Now()
	defer func() { observe("UpdateClient", start, err) }()

	var set setClause
	if patch.FirstName != nil {
		set.add("nombre", *patch.FirstName)
	}
	if patch.LastName != nil {
		set.add("apellido", *patch.LastName)
	}
	if patch.NationalID != nil {
		set.add("cedula", *patch.NationalID)
	}
	if patch.Phone != nil {
		set.add("telefono", *patch.Phone)
	}
	if patch.Address != nil {
		set.add("direccion", *patch.Address)
	}
	if patch.Email != nil {
		set.add("email", *patch.Email)
	}
	if patch.PhotoURL != nil {
		set.add("foto_url", *patch.PhotoURL)
	}
	if patch.Active != nil {
		set.add("activo", *patch.Active)
	}
	if set.empty() {
		return r.FindByID(ctx, clientID)
	}

	columns, args, idx := set.build(clientID)
	sql := fmt.Sprintf(`UPDATE clientes SET %s, actualizado_en = NOW() WHERE id = $%d RETURNING %s`, columns, idx, clientColumns)

	updated, err = scanClient(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.ErrorContext(ctx, "Failed to update client", "client_id", clientID, "error", err)
		}
		return nil, translateDBError(err, r.logger)
	}
	return updated, nil
}

func (r *ClientRepository) Delete(ctx context.Context, clientID int64) (err error) {
	start := time.Now()
	defer func() { observe("DeleteClient", start, err) }()

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, clientID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete client", "client_id", clientID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountOpenLoans counts the client's loans that still accept payments.
func (r *ClientRepository) CountOpenLoans(ctx context.Context, clientID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM prestamos WHERE cliente_id = $1 AND estado = ANY($2)`
	if err := r.db.QueryRow(ctx, query, clientID, openLoanStates).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count open loans", "client_id", clientID, "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return count, nil
}
