package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorDetails(rec, http.StatusConflict, "Sync already running", "try again later")

	if rec.Code != http.StatusConflict || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("code=%d content-type=%s", rec.Code, rec.Header().Get("Content-Type"))
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Sync already running" || body.Details != "try again later" {
		t.Errorf("body = %+v", body)
	}
}
