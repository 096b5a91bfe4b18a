package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsScrape(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObservePrediction(25 * time.Millisecond)
	metrics.ObservePrediction(40 * time.Millisecond)
	metrics.SetAccuracy(0.87)
	metrics.RecordRequest("POST", "/predict", 200)
	metrics.RecordRequest("POST", "/predict", 422)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{
		"ml_predictions_total 2",
		"ml_model_accuracy 0.87",
		`api_requests_total{endpoint="/predict",method="POST",status="200"} 1`,
		`api_requests_total{endpoint="/predict",method="POST",status="422"} 1`,
		"ml_prediction_duration_seconds_count 2",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("scrape output missing %q:\n%s", want, body)
		}
	}
}
