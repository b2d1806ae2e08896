package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/api/respond"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return m
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.OK(rec, map[string]string{"name": "Ada"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	m := decode(t, rec)
	if m["success"] != true {
		t.Error("success should be true")
	}
	data := m["data"].(map[string]any)
	if data["name"] != "Ada" {
		t.Errorf("data = %v", data)
	}
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Created(rec, map[string]string{"id": "abc"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Message(rec, "registration cancelled")
	m := decode(t, rec)
	if m["message"] != "registration cancelled" {
		t.Errorf("message = %v", m["message"])
	}
	if _, present := m["data"]; present {
		t.Error("message-only envelope should omit data")
	}
}

func TestList(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.List(rec, []string{"a", "b"}, respond.Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3})

	m := decode(t, rec)
	p := m["pagination"].(map[string]any)
	if p["page"] != float64(2) || p["total"] != float64(5) || p["totalPages"] != float64(3) {
		t.Errorf("pagination = %v", p)
	}
}

func TestErr_KnownKind(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Err(rec, nil, apperr.Validation("email"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	m := decode(t, rec)
	if m["success"] != false {
		t.Error("success should be false")
	}
	if m["message"] != "missing required fields: email" {
		t.Errorf("message = %v", m["message"])
	}
	fields := m["fields"].([]any)
	if len(fields) != 1 || fields[0] != "email" {
		t.Errorf("fields = %v", fields)
	}
}

func TestErr_HidesServerCause(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Err(rec, nil, errors.New("connection refused to 10.0.0.5:27017"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	m := decode(t, rec)
	if m["message"] != "internal server error" {
		t.Errorf("internal cause leaked: %v", m["message"])
	}
}
