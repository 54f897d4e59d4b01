package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tiffin-app-go/internal/apperr"
	"tiffin-app-go/pkg/logger"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var envelope errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return envelope.Error
}

func TestStatusFor(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:         http.StatusBadRequest,
		apperr.KindNotFound:           http.StatusNotFound,
		apperr.KindForbidden:          http.StatusForbidden,
		apperr.KindConflict:           http.StatusConflict,
		apperr.KindStateConflict:      http.StatusUnprocessableEntity,
		apperr.KindDeadlineExceeded:   http.StatusUnprocessableEntity,
		apperr.KindExpired:            http.StatusUnprocessableEntity,
		apperr.KindInsufficientTokens: http.StatusUnprocessableEntity,
		apperr.KindAlreadyPaused:      http.StatusUnprocessableEntity,
		apperr.KindUnprocessable:      http.StatusUnprocessableEntity,
		apperr.KindConfiguration:      http.StatusInternalServerError,
		apperr.KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := StatusFor(kind); got != want {
			t.Fatalf("kind %s: expected %d, got %d", kind, want, got)
		}
	}
}

func TestWriteServiceErrorKeepsCallerFaultDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("%w: wallet w-1", apperr.InsufficientTokens("insufficient_tokens", "no curry tokens left"))

	WriteServiceError(rec, logger.Nop(), "curry.place_order", err)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != "insufficient_tokens" || !strings.HasPrefix(body.Message, "no curry tokens left") {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWriteServiceErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteServiceError(rec, logger.Nop(), "curry.place_order", errors.New("pq: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != "internal_error" || body.Message != "internal error" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWriteServiceErrorConfiguration(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteServiceError(rec, logger.Nop(), "meals.schedule", apperr.Configuration("slot_not_configured", "no delivery slot configured"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "configuration_error" {
		t.Fatalf("expected configuration_error, got %s", body.Code)
	}
}

type sampleRequest struct {
	PackageID string `json:"package_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

func TestDecodeAndValidate(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		ok      bool
		message string
	}{
		{name: "valid", body: `{"package_id":"7d8b2f5e-3c1a-4b8e-9f0a-1a2b3c4d5e6f","start_date":"2025-01-20"}`, ok: true},
		{name: "empty", body: ``, message: "invalid json body"},
		{name: "unknown field", body: `{"package_id":"x","extra":1}`, message: "invalid json body"},
		{name: "missing", body: `{"start_date":"2025-01-20"}`, message: "package_id is required"},
		{name: "bad uuid", body: `{"package_id":"abc","start_date":"2025-01-20"}`, message: "package_id must be a uuid"},
		{name: "bad date", body: `{"package_id":"7d8b2f5e-3c1a-4b8e-9f0a-1a2b3c4d5e6f","start_date":"20-01-2025"}`, message: "start_date must be a date (YYYY-MM-DD)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var dst sampleRequest
			ok := DecodeAndValidate(rec, req, &dst)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if tc.ok {
				return
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if body := decodeError(t, rec); body.Message != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, body.Message)
			}
		})
	}
}
