package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesOnlyCashflowCollectors(t *testing.T) {
	Default().RecurringRunsTotal.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := string(body)

	tests := []struct {
		name    string
		metric  string
		present bool
	}{
		{"labelled counter", `cashflow_recurring_runs_total{result="success"} 1`, true},
		{"plain counter", "cashflow_installments_created_total 0", true},
		{"go runtime", "go_goroutines", false},
		{"process", "process_cpu_seconds_total", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Contains(out, tt.metric); got != tt.present {
				t.Errorf("output contains %q = %v, want %v", tt.metric, got, tt.present)
			}
		})
	}
}

func TestDefaultIsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() returned different instances")
	}
}
