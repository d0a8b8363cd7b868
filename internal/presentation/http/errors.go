package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"

	appcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

var errEmptyBody = errors.New("request body is required")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	body := http.MaxBytesReader(w, r.Body, defaultMaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeTextPlain)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domproduct.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domproduct.ErrConflict),
		errors.Is(err, domorder.ErrConflict),
		errors.Is(err, appcheckout.ErrIdempotencyInFlight):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, appcheckout.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	default:
		// Internal details stay in the logs.
		writeError(w, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
	}
}
