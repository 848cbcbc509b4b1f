package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsPublishAndRejections(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPublished(3)
	c.RecordPublished(2)
	c.RecordRejected("publish", "already_exists")
	c.RecordRejected("publish", "already_exists")
	c.RecordRejected("search", "not_found")

	require.Equal(t, 5.0, testutil.ToFloat64(c.slotsPublished))
	require.Equal(t, 2.0, testutil.ToFloat64(c.rejected.WithLabelValues("publish", "already_exists")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.rejected.WithLabelValues("search", "not_found")))
}

func TestCollector_RecordsSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSearch(20*time.Millisecond, 4)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "interviewcal_search_duration_seconds" {
			found = true
			require.Equal(t, uint64(1), mf.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	require.True(t, found, "search duration histogram not registered")
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPublished(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.Equal(t, 200, rec.Code)
	require.True(t, strings.Contains(string(body), "interviewcal_slots_published_total 1"))
}
