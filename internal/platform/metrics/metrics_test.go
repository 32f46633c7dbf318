package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	c := New()
	c.RecordRequest(http.MethodPost, "/api/v1/evaluations/{id}/ratings", 201, 30*time.Millisecond)
	c.RecordRequest(http.MethodPost, "/api/v1/evaluations/{id}/ratings", 409, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(http.MethodPost, "/api/v1/evaluations/{id}/ratings", "409")))
}

func TestRecordJob(t *testing.T) {
	c := New()
	c.RecordJob("timeclock.discrepancies", 8, 2, time.Second, nil)
	c.RecordJob("timeclock.discrepancies", 0, 0, time.Second, errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobRuns.WithLabelValues("timeclock.discrepancies", "failed")))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.jobItems.WithLabelValues("timeclock.discrepancies", "succeeded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.jobItems.WithLabelValues("timeclock.discrepancies", "failed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.RecordEmail(nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `avd_emails_total{outcome="sent"} 1`)
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordRequest("GET", "/", 200, time.Millisecond)
	c.RecordJob("x", 1, 0, time.Millisecond, nil)
	c.RecordEmail(nil)
	assert.Nil(t, c.Registry())
}
