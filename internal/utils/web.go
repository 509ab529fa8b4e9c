package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/impservers/impchat/internal/errors"
	"github.com/impservers/impchat/internal/logger"
)

// WriteErrorAndStatusCode maps a service error onto the response. Anything
// that is not an ErrorWithStatusCode becomes a 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	logger.Log.Error("internal error", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// DecodeValidate decodes JSON into body and runs struct tag validation.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return errors.NewValidation("Body is invalid json")
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		return errors.NewValidation("Required fields missing or invalid")
	}
	return nil
}

// Decode decodes JSON into body without validation.
func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return errors.NewValidation("Body is invalid json")
	}
	return nil
}

// GetIP extracts the caller address, preferring proxy headers.
func GetIP(r *http.Request) (string, error) {
	ip := r.Header.Get("X-REAL-IP")
	if netIP := net.ParseIP(ip); netIP != nil {
		return ip, nil
	}

	for _, candidate := range strings.Split(r.Header.Get("X-FORWARDED-FOR"), ",") {
		candidate = strings.TrimSpace(candidate)
		if netIP := net.ParseIP(candidate); netIP != nil {
			return candidate, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if netIP := net.ParseIP(ip); netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}
