package postgres

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/domain/setting"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const settingColumns = `clave, valor, actualizado_en`

type SettingRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ setting.Repository = (*SettingRepository)(nil)

func NewSettingRepository(db DBPool, logger *slog.Logger) *SettingRepository {
	if db == nil {
		panic("DBPool cannot be nil for SettingRepository")
	}
	return &SettingRepository{
		db:     db,
		logger: logger.With("component", "SettingRepository"),
	}
}

func scanSetting(row pgx.Row) (*setting.Setting, error) {
	var s setting.Setting
	if err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingRepository) List(ctx context.Context) (settings []setting.Setting, err error) {
	start := time.Now()
	defer func() { observe("ListSettings", start, err) }()

	rows, err := r.db.Query(ctx, `SELECT `+settingColumns+` FROM configuracion ORDER BY clave`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query settings", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	settings = make([]setting.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan setting row", "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		settings = append(settings, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return settings, nil
}

func (r *SettingRepository) FindByKey(ctx context.Context, key string) (s *setting.Setting, err error) {
	start := time.Now()
	defer func() { observe("FindSettingByKey", start, err) }()

	s, err = scanSetting(r.db.QueryRow(ctx, `SELECT `+settingColumns+` FROM configuracion WHERE clave = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query setting", "key", key, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return s, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key, value string) (s *setting.Setting, err error) {
	start := time.Now()
	defer func() { observe("UpsertSetting", start, err) }()

	sql := `
        INSERT INTO configuracion (clave, valor, actualizado_en)
        VALUES ($1, $2, NOW())
        ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor, actualizado_en = NOW()
        RETURNING ` + settingColumns

	s, err = scanSetting(r.db.QueryRow(ctx, sql, key, value))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert setting", "key", key, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return s, nil
}
