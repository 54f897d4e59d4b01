package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tiffin-app-go/internal/apperr"
	"tiffin-app-go/pkg/logger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errEmptyBody = errors.New("empty body")

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	return decodeJSON(r, dst)
}

func WriteUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

// StatusFor maps an error kind to the HTTP status returned for it.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindStateConflict, apperr.KindDeadlineExceeded, apperr.KindExpired,
		apperr.KindInsufficientTokens, apperr.KindAlreadyPaused, apperr.KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError logs err and renders it. Caller faults keep their code and
// message; anything else is reported as a generic internal error.
func WriteServiceError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	appErr, ok := apperr.As(err)
	if !ok {
		log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	status := StatusFor(appErr.Kind)
	switch appErr.Kind {
	case apperr.KindConfiguration:
		log.Critical(op+": configuration error", append(args, "err", err)...)
		writeError(w, status, "configuration_error", err.Error())
	default:
		log.BusinessError(op+": rejected", err, append(args, "code", appErr.Code)...)
		writeError(w, status, appErr.Code, err.Error())
	}
}
