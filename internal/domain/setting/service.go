package setting

import (
	"context"
	"errors"
	"fmt"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"strings"
)

const maxKeyLength = 100

type SettingService interface {
	ListSettings(ctx context.Context) ([]Setting, error)

	GetSetting(ctx context.Context, key string) (*Setting, error)

	UpdateSetting(ctx context.Context, key, value string) (*Setting, error)
}

type settingServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewSettingService(r Repository, logger *slog.Logger) SettingService {
	return &settingServiceImpl{repo: r, logger: logger.With("component", "SettingService")}
}

func (s *settingServiceImpl) ListSettings(ctx context.Context) ([]Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list settings", "error", err)
		return nil, err
	}
	return settings, nil
}

func (s *settingServiceImpl) GetSetting(ctx context.Context, key string) (*Setting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: setting %q", apperrors.ErrNotFound, key)
		}
		s.logger.ErrorContext(ctx, "Failed to get setting", "key", key, "error", err)
		return nil, err
	}
	return found, nil
}

func (s *settingServiceImpl) UpdateSetting(ctx context.Context, key, value string) (*Setting, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(value) == "" {
		return nil, apperrors.NewValidationError("valor", "value is required")
	}

	updated, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store setting", "key", key, "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Setting updated", "key", key)
	return updated, nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperrors.NewValidationError("clave", "key is required")
	}
	if len(key) > maxKeyLength {
		return "", apperrors.NewValidationError("clave", fmt.Sprintf("key must be at most %d characters", maxKeyLength))
	}
	return key, nil
}
