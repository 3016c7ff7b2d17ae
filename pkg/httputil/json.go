package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as an ErrorBody. The status is derived from the
// error code.
func WriteError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
		msg = "internal error"
	}
	WriteJSON(w, Status(code), ErrorBody{Code: code, Message: msg})
}

// Status maps an error code to an HTTP status.
func Status(code errs.Code) int {
	switch code {
	case errs.ErrCodeNotFound, errs.ErrCodeUnreachable, errs.ErrCodeConnectorNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFloor, errs.ErrCodeInvalidVia:
		return http.StatusBadRequest
	case errs.ErrCodeAmbiguous:
		return http.StatusConflict
	case errs.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v. Unknown fields, trailing
// data and bodies over MaxBodyBytes are INVALID_INPUT errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.New(errs.ErrCodeInvalidInput, "request body is empty")
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	if dec.More() {
		return errs.New(errs.ErrCodeInvalidInput, "request body has trailing data")
	}
	return nil
}
