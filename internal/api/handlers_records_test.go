package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/projecthelena/healthlog/internal/db"
)

func TestRecordHandlers(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	seed := []db.Record{{ID: 1, Message: "ping", CreatedAt: created}}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		storeErr   error
		wantStatus int
		wantError  string
		wantCalls  int
	}{
		{"list", "GET", "/health", "", nil, http.StatusOK, "", 1},
		{"list store failure", "GET", "/health", "", errStoreDown, http.StatusInternalServerError, "Database error", 1},

		{"create", "POST", "/health", `{"message":"hello"}`, nil, http.StatusCreated, "", 1},
		{"create missing message", "POST", "/health", `{}`, nil, http.StatusBadRequest, "Message is required", 0},
		{"create empty message", "POST", "/health", `{"message":""}`, nil, http.StatusBadRequest, "Message is required", 0},
		{"create empty body", "POST", "/health", "", nil, http.StatusBadRequest, "Message is required", 0},
		{"create malformed json", "POST", "/health", `{"message":`, nil, http.StatusBadRequest, "Invalid request body", 0},
		{"create non-string message", "POST", "/health", `{"message":42}`, nil, http.StatusBadRequest, "Invalid request body", 0},
		{"create store failure", "POST", "/health", `{"message":"x"}`, errStoreDown, http.StatusInternalServerError, "Database error", 1},

		{"update", "PUT", "/health/1", `{"message":"pong"}`, nil, http.StatusOK, "", 1},
		{"update missing message", "PUT", "/health/1", `{}`, nil, http.StatusBadRequest, "Message is required", 0},
		{"update unknown id", "PUT", "/health/999999", `{"message":"x"}`, nil, http.StatusNotFound, "Message not found", 1},
		{"update non-numeric id", "PUT", "/health/abc", `{"message":"x"}`, nil, http.StatusNotFound, "Message not found", 0},
		{"update store failure", "PUT", "/health/1", `{"message":"x"}`, errStoreDown, http.StatusInternalServerError, "Database error", 1},

		{"delete", "DELETE", "/health/1", "", nil, http.StatusOK, "", 1},
		{"delete unknown id", "DELETE", "/health/42", "", nil, http.StatusNotFound, "Message not found", 1},
		{"delete non-numeric id", "DELETE", "/health/1.5", "", nil, http.StatusNotFound, "Message not found", 0},
		{"delete store failure", "DELETE", "/health/1", "", errStoreDown, http.StatusInternalServerError, "Database error", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{records: append([]db.Record{}, seed...), err: tt.storeErr, now: created}
			router := newTestRouter(t, store)

			w := doRequest(router, tt.method, tt.path, tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d. Body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}
			if got := store.callCount(); got != tt.wantCalls {
				t.Errorf("Expected %d store calls, got %d (%v)", tt.wantCalls, got, store.calls)
			}
			if tt.wantError != "" {
				var resp map[string]string
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if resp["error"] != tt.wantError {
					t.Errorf("Expected error %q, got %q", tt.wantError, resp["error"])
				}
			}
		})
	}
}

func TestStoreFailureDetailsNotLeaked(t *testing.T) {
	store := &fakeStore{err: errStoreDown}
	router := newTestRouter(t, store)

	w := doRequest(router, "GET", "/health", "")

	if strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("store error leaked to client: %s", w.Body.String())
	}
}

func TestListRecords_EmptyArray(t *testing.T) {
	router := newTestRouter(t, &fakeStore{})

	w := doRequest(router, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("Expected [], got %s", body)
	}
}

func TestCreateRecord_ResponseShape(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	router := newTestRouter(t, &fakeStore{now: created})

	w := doRequest(router, "POST", "/health", `{"message":"ping"}`)

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != float64(1) {
		t.Errorf("Expected id 1, got %v", resp["id"])
	}
	if resp["message"] != "ping" {
		t.Errorf("Expected message ping, got %v", resp["message"])
	}
	if resp["created_at"] != "2026-10-18T09:30:00Z" {
		t.Errorf("Expected created_at 2026-10-18T09:30:00Z, got %v", resp["created_at"])
	}
}

func TestDeleteRecord_WrapsDeleted(t *testing.T) {
	store := &fakeStore{records: []db.Record{{ID: 7, Message: "bye"}}}
	router := newTestRouter(t, store)

	w := doRequest(router, "DELETE", "/health/7", "")

	var resp struct {
		Deleted db.Record `json:"deleted"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Deleted.ID != 7 || resp.Deleted.Message != "bye" {
		t.Errorf("Unexpected deleted payload: %+v", resp.Deleted)
	}
}

func TestCreateRecord_BodyTooLarge(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, store)

	body := `{"message":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w := doRequest(router, "POST", "/health", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if store.callCount() != 0 {
		t.Error("store must not be called for oversize body")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	router := newTestRouter(t, &fakeStore{})

	if w := doRequest(router, "GET", "/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown route, got %d", w.Code)
	}
	if w := doRequest(router, "PATCH", "/health/1", `{"message":"x"}`); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for PATCH, got %d", w.Code)
	}
}
