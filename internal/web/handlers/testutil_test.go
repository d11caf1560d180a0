package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matiasrios/facegate/internal/attendance"
	"github.com/matiasrios/facegate/internal/embedding"
	"github.com/matiasrios/facegate/internal/ledger"
	"github.com/matiasrios/facegate/internal/matcher"
	"github.com/matiasrios/facegate/internal/shift"
	"github.com/matiasrios/facegate/internal/storage/mock"
	"github.com/matiasrios/facegate/internal/store"
)

// newTestService builds an attendance service over a mock backend with the
// clock pinned inside the morning check-in window.
func newTestService(t *testing.T) *attendance.Service {
	t.Helper()

	backend := mock.NewMockStore()
	employees, err := store.New(context.Background(), backend, embedding.MetricEuclidean)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	schedule, err := shift.LoadSchedule("")
	if err != nil {
		t.Fatalf("failed to load schedule: %v", err)
	}

	l := ledger.New(backend)
	l.SetClock(func() time.Time {
		return time.Date(2025, 3, 10, 6, 0, 0, 0, time.Local)
	})

	m := matcher.New(embedding.MetricEuclidean, 0.6)
	return attendance.New(employees, m, schedule, l, true)
}

func zeroEmbedding() []float32 {
	return make([]float32, embedding.Dim)
}

func registerEmployee(t *testing.T, svc *attendance.Service, id string) {
	t.Helper()
	res := svc.RegisterEmployee(context.Background(), id, "production", "operator", "morning", zeroEmbedding())
	if !res.OK {
		t.Fatalf("registration failed: %s %s", res.Reason, res.Message)
	}
}

// doJSON posts a JSON body to the handler and returns the recorder.
func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// doRouted sends a request through a chi router so URL params resolve.
func doRouted(t *testing.T, register func(r chi.Router), method, target string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	register(r)
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}
