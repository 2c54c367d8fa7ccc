package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.SessionCreated()
	m.SessionCreated()
	m.Forwarded("offer", 1)
	m.Forwarded("offer", 0)
	m.Dropped(DropMalformed)
	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()

	if got := testutil.ToFloat64(m.sessionsCreated); got != 2 {
		t.Errorf("sessions created = %v", got)
	}
	if got := testutil.ToFloat64(m.forwarded.WithLabelValues("offer")); got != 1 {
		t.Errorf("forwarded offer = %v", got)
	}
	if got := testutil.ToFloat64(m.dropped.WithLabelValues(DropMalformed)); got != 1 {
		t.Errorf("dropped malformed = %v", got)
	}
	if got := testutil.ToFloat64(m.connections); got != 1 {
		t.Errorf("connections = %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.SessionCreated()
	m.StoreError("create")
	m.ConnOpened()
	m.SetRooms(3)
	m.Message("offer")
	m.Dropped(DropNotInRoom)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil handler status = %d", rec.Code)
	}
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.SessionCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "livesession_sessions_created_total 1") {
		t.Fatalf("exposition missing counter:\n%s", body)
	}
}
