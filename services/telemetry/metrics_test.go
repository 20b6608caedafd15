package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/checkin"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	logsvc "github.com/rhazelina/qr-absence-sub000/services/logger"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.ObserveOutcome(checkin.Accept())
	m.ObserveOutcome(checkin.Reject(checkin.Expired))
	m.ObserveOutcome(checkin.Reject(checkin.Expired))
	m.ObserveDropped(StageGate, 3)
	m.ObserveDropped(StageSource, 4)
	m.ObserveLeave(leave.Result{Request: leave.Request{Kind: leave.TeacherSick}, Applied: true})
	m.ObserveLeave(leave.Result{Summary: leave.Summary{Kind: leave.TeacherPersonalLeave}})
	m.ObservePurge(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkinOutcomes.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkinOutcomes.WithLabelValues("rejected:expired")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.checkinDropped.WithLabelValues("gate")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.checkinDropped.WithLabelValues("source")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leaveRequests.WithLabelValues("teacher_sick", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leaveRequests.WithLabelValues("teacher_personal_leave", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsPurged))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `absence_checkin_outcomes_total{outcome="accepted"} 1`))
}

func TestSetup_Disabled(t *testing.T) {
	shutdown := Setup("absence-test", &core.Config{}, logsvc.NewLoggerMock())
	assert.NoError(t, shutdown(context.Background()))
}
