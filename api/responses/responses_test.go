package responses

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestWriteErrorMapsCodeToStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   pkgerrors.Code
		status int
		public bool
	}{
		{pkgerrors.CodeValidation, 400, true},
		{pkgerrors.CodeUnauthorized, 401, true},
		{pkgerrors.CodeNotFound, 404, true},
		{pkgerrors.CodeConflict, 409, true},
		{pkgerrors.CodeInternal, 500, false},
		{pkgerrors.CodeDependency, 503, false},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, pkgerrors.New(tc.code, "boom details"))

		if rec.Code != tc.status {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.status, rec.Code)
		}
		var envelope types.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Error.Code != string(tc.code) {
			t.Fatalf("expected code %s, got %s", tc.code, envelope.Error.Code)
		}
		if tc.public && envelope.Error.Message != "boom details" {
			t.Fatalf("code %s: expected the typed message, got %q", tc.code, envelope.Error.Message)
		}
		if !tc.public && envelope.Error.Message == "boom details" {
			t.Fatalf("code %s: internal message must not leak", tc.code)
		}
	}
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, context.DeadlineExceeded)

	if rec.Code != 500 {
		t.Fatalf("expected 500 for untyped error, got %d", rec.Code)
	}
}
