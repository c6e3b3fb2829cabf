package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubReminderRunner struct {
	sent int
	err  error
}

func (s *stubReminderRunner) SendGroupedReminders() (int, error) {
	return s.sent, s.err
}

func TestReminderSendNow(t *testing.T) {
	handler := NewReminderHandler(&stubReminderRunner{sent: 7})

	req := httptest.NewRequest(http.MethodPost, "/api/reminders/send", nil)
	rr := httptest.NewRecorder()
	handler.SendNow(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Code = %v, want 200", rr.Code)
	}

	var body struct {
		OK   bool `json:"ok"`
		Sent int  `json:"sent"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.OK || body.Sent != 7 {
		t.Errorf("body = %+v, want ok with sent=7", body)
	}
}

func TestReminderSendNow_fatalError(t *testing.T) {
	handler := NewReminderHandler(&stubReminderRunner{err: errors.New("loading plants: connection reset")})

	req := httptest.NewRequest(http.MethodPost, "/api/reminders/send", nil)
	rr := httptest.NewRecorder()
	handler.SendNow(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Code = %v, want 500", rr.Code)
	}

	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.OK || body.Error == "" {
		t.Errorf("body = %+v, want not-ok with error message", body)
	}
}

func TestReminderSendNow_wrongMethod(t *testing.T) {
	handler := NewReminderHandler(&stubReminderRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/reminders/send", nil)
	rr := httptest.NewRecorder()
	handler.SendNow(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Code = %v, want 405", rr.Code)
	}
}
