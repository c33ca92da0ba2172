package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"carteira/internal/core"
	applog "carteira/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500 body.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case isValidationError(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		applog.FromContext(ctx).ErrorContext(ctx, "Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidCurrency,
		core.ErrInvalidDate,
		core.ErrEmptyName,
		core.ErrEmptyDescription,
		core.ErrInvalidAccountType,
		core.ErrInvalidTxType,
		core.ErrInvalidTagType,
		core.ErrInvalidPeriod,
		core.ErrMissingDestination,
		core.ErrSameDestination,
		core.ErrUnexpectedDest,
		core.ErrSelfParent,
		core.ErrTagCycle,
		core.ErrDescriptionTooLong,
		core.ErrMissingAccount,
		core.ErrMissingBudgetTag,
		core.ErrInvalidDateRange,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
