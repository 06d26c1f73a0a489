package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRequestID(req.Context(), "req-1"))
	rr := httptest.NewRecorder()

	HandleError(rr, req, "Test error", "invalid_argument", http.StatusBadRequest)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var resp Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error != "Test error" || resp.Kind != "invalid_argument" || resp.RequestID != "req-1" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestWriteJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	WriteJSON(rr, req, http.StatusOK, map[string]string{"status": "ok"})

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Error   string            `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Data["status"] != "ok" || resp.Error != "" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := RequestID(req.Context()); id != "" {
		t.Errorf("expected empty request id, got %q", id)
	}
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"sentences", "This is a test. This is only a test!", "This is a test.\nThis is only a test!"},
		{"question", "  Why? Because.  ", "Why?\nBecause."},
		{"ellipsis", "Wait... what", "Wait...\nwhat"},
		{"no punctuation", "just words", "just words"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatText(tt.input); got != tt.want {
				t.Errorf("FormatText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
