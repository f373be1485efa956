package telemetry

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()
	m.Observe(time.Now(), []string{"image", "target"}, nil)
	m.Observe(time.Now(), []string{"image"}, nil)
	m.Observe(time.Now(), []string{"image"}, errors.New("boom"))

	if got := testutil.ToFloat64(m.Images.WithLabelValues("image")); got != 2 {
		t.Errorf("image count = %v, expected 2", got)
	}
	if got := testutil.ToFloat64(m.Images.WithLabelValues("target")); got != 1 {
		t.Errorf("target count = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.Errors); got != 1 {
		t.Errorf("error count = %v, expected 1", got)
	}
	if got := testutil.CollectAndCount(m.Duration); got != 1 {
		t.Errorf("expected one histogram, got %d", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Observe(time.Now(), []string{"image"}, nil)

	path := filepath.Join(t.TempDir(), "augment.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"augment_images_total", "augment_errors_total", "augment_duration_seconds"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("textfile missing %s", name)
		}
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Errors.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "augment_errors_total 1") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
