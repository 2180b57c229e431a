package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"distro-backend/internal/apperrors"

	"github.com/jackc/pgx/v5"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps the engine's error codes onto HTTP statuses. The code
// always travels in the body so agent apps can branch on it.
func writeError(w http.ResponseWriter, err error) {
	// Repositories surface missing rows as pgx.ErrNoRows when called
	// outside a settlement; normalize before mapping.
	if errors.Is(err, pgx.ErrNoRows) {
		err = apperrors.Wrap(apperrors.CodeNotFound, "not found", err)
	}
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeForbidden:
		status = http.StatusForbidden
	case apperrors.CodeAlreadyFinalized, apperrors.CodeLedgerConflict, apperrors.CodeInvalidLedgerState:
		status = http.StatusConflict
	case apperrors.CodeInvalidRequest:
		status = http.StatusBadRequest
	case apperrors.CodeInvalidAmount, apperrors.CodeOverCollection:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeTransactionConflict:
		// Retriable: the caller should resubmit the same request.
		status = http.StatusServiceUnavailable
	case apperrors.CodePersistenceFailure:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		log.Printf("[API] internal error: %v", err)
	}

	body := map[string]interface{}{
		"code":      code,
		"retriable": apperrors.Retriable(err),
	}
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		body["error"] = ae.Message
	} else {
		body["error"] = "internal error"
	}
	writeJSON(w, status, body)
}
