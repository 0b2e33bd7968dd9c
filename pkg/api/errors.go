package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/relief/pkg/errors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidGrid,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidRecipe,
		errors.ErrCodeInvalidOperation,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeShapeMismatch, errors.ErrCodeOutOfRange:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends err as a JSON error body. Internal errors are logged
// and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}
	if status == http.StatusRequestEntityTooLarge {
		resp.Code = string(errors.ErrCodeInvalidInput)
		resp.Message = "request body too large"
	}
	if status >= 500 {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
		if resp.Code == "" {
			resp.Code = string(errors.ErrCodeInternal)
			resp.Message = "internal server error"
		}
	}
	writeJSON(w, status, resp)
}
