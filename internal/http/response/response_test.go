package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONAddsSuccessFlag(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]any{"success": false, "modifiedCount": 3})

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true || body["modifiedCount"] != float64(3) {
		t.Fatalf("unexpected body: %v", body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusConflict, "CONFLICT", "order changed", map[string]string{"id": "o1"})

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Message != "order changed" || env.Error.Code != "CONFLICT" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
