package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	c.Register(reg)

	c.ObserveAnalysis("shopify")
	c.ObserveConversion("shopify", "ok", 10, 8, 3, 20*time.Millisecond)
	c.SetActiveSessions(2)
	c.SetReferenceRows("category", 5)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`catalogconv_conversions_total{outcome="ok",platform="shopify"} 1`,
		`catalogconv_analyses_total{platform="shopify"} 1`,
		`catalogconv_rows_in_total 10`,
		`catalogconv_rows_out_total 8`,
		`catalogconv_default_category_rows_total 3`,
		`catalogconv_active_sessions 2`,
		`catalogconv_reference_rows{level="category"} 5`,
		`catalogconv_conversion_duration_seconds_count{platform="shopify"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
