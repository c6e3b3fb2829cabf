package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondJSON(rr, http.StatusCreated, map[string]int{"n": 1})

	if rr.Code != http.StatusCreated {
		t.Errorf("Code = %v, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", ct)
	}

	var body map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["n"] != 1 {
		t.Errorf("body = %v", body)
	}
}

func TestRespondError(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, http.StatusBadRequest, "bad input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Code = %v, want 400", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "Bad Request" || body["message"] != "bad input" {
		t.Errorf("body = %v", body)
	}
}

func TestRespondSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondSuccess(rr, "done", map[string]string{"k": "v"})

	if rr.Code != http.StatusOK {
		t.Errorf("Code = %v, want 200", rr.Code)
	}

	var body struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !body.Success || body.Message != "done" || body.Data["k"] != "v" {
		t.Errorf("body = %+v", body)
	}
}
