package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDashboardCountsByOutcome(t *testing.T) {
	ok := testutil.ToFloat64(dashboardRequests.WithLabelValues("ok"))
	failed := testutil.ToFloat64(dashboardRequests.WithLabelValues("error"))

	ObserveDashboard(time.Now(), nil)
	ObserveDashboard(time.Now(), errors.New("db down"))
	ObserveDashboard(time.Now(), nil)

	assert.Equal(t, ok+2, testutil.ToFloat64(dashboardRequests.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(dashboardRequests.WithLabelValues("error")))
}

func TestRecordActivityLogged(t *testing.T) {
	before := testutil.ToFloat64(activitiesLogged.WithLabelValues("pending"))
	RecordActivityLogged("pending")
	assert.Equal(t, before+1, testutil.ToFloat64(activitiesLogged.WithLabelValues("pending")))
}
