package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"lending-engine/internal/api/handler/dto"
	mw "lending-engine/internal/api/middleware"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("%w: no request body", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}

// decodeAndValidate decodes the body into v and runs its validation tags.
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := decodeJSON(r, v); err != nil {
		return err
	}
	return dto.Validate(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, err error) {
	status, message := http.StatusInternalServerError, "An unexpected error occurred."
	detail := dto.ErrorDetail{Code: apperrors.Code(err)}

	var validationError *apperrors.ValidationError
	var pendingErr *loan.PendingBalanceError

	switch {
	case errors.As(err, &pendingErr):
		status, message = http.StatusConflict, pendingErr.Error()
		pending := pendingErr.Pending.StringFixed(2)
		installmentID := strconv.FormatInt(pendingErr.InstallmentID, 10)
		detail.PendingBalance = &pending
		detail.InstallmentID = &installmentID
	case errors.As(err, &validationError):
		status, message = http.StatusBadRequest, validationError.Message
		detail.Field = validationError.Field
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidPaymentAmount):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrAmountExceedsPending), errors.Is(err, apperrors.ErrInstallmentLoanMismatch),
		errors.Is(err, apperrors.ErrLoanClosed), errors.Is(err, apperrors.ErrInvalidStateTransition),
		errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
		detail.Code = "INTERNAL_ERROR"
	}

	detail.Message = message
	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, name)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", apperrors.ErrInvalidArgument, name)
	}
	return id, nil
}

func actorFrom(r *http.Request) (user.Actor, error) {
	actor, ok := mw.ActorFromContext(r.Context())
	if !ok {
		return user.Actor{}, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}
	return actor, nil
}
