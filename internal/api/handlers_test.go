package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/projecthelena/healthlog/internal/config"
	"github.com/projecthelena/healthlog/internal/db"
)

var errStoreDown = errors.New("dial tcp 10.0.0.1:5432: connection refused")

// fakeStore records calls and returns canned results.
type fakeStore struct {
	mu      sync.Mutex
	calls   []string
	records []db.Record
	err     error
	now     time.Time
}

func (f *fakeStore) called(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeStore) find(id int64) (db.Record, bool) {
	for _, r := range f.records {
		if r.ID == id {
			return r, true
		}
	}
	return db.Record{}, false
}

func (f *fakeStore) ListRecords(ctx context.Context) ([]db.Record, error) {
	f.called("list")
	if f.err != nil {
		return nil, f.err
	}
	return append([]db.Record{}, f.records...), nil
}

func (f *fakeStore) CreateRecord(ctx context.Context, message string) (db.Record, error) {
	f.called("create")
	if f.err != nil {
		return db.Record{}, f.err
	}
	r := db.Record{ID: int64(len(f.records) + 1), Message: message, CreatedAt: f.now}
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeStore) UpdateRecord(ctx context.Context, id int64, message string) (db.Record, error) {
	f.called("update")
	if f.err != nil {
		return db.Record{}, f.err
	}
	r, ok := f.find(id)
	if !ok {
		return db.Record{}, db.ErrNotFound
	}
	r.Message = message
	return r, nil
}

func (f *fakeStore) DeleteRecord(ctx context.Context, id int64) (db.Record, error) {
	f.called("delete")
	if f.err != nil {
		return db.Record{}, f.err
	}
	r, ok := f.find(id)
	if !ok {
		return db.Record{}, db.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) Now(ctx context.Context) (time.Time, error) {
	f.called("now")
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.now, nil
}

func newTestRouter(t *testing.T, store RecordStore) *Router {
	t.Helper()
	cfg := config.Default()
	router := NewRouter(store, &cfg)
	t.Cleanup(router.Close)
	return router
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
