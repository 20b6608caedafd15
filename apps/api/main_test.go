package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/session"
	logsvc "github.com/rhazelina/qr-absence-sub000/services/logger"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
)

func Test_purgeSessions(t *testing.T) {
	sessions := session.NewRegistry()
	metrics := telemetry.NewMetrics()
	now := time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC)

	sessions.Open(session.NewKey("Math", "XI", "07:30-09:00", now.AddDate(0, 0, -1)))
	sessions.Open(session.NewKey("Math", "XI", "07:30-09:00", now.AddDate(0, 0, -7)))
	today, _ := sessions.Open(session.NewKey("Math", "XI", "07:30-09:00", now))

	assert.Equal(t, 2, purgeSessions(sessions, metrics, logsvc.NewLoggerMock(), now))
	assert.Equal(t, 1, sessions.Len())
	_, err := sessions.Get(today.Session().ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, purgeSessions(sessions, metrics, logsvc.NewLoggerMock(), now))
}

func Test_newScheduler(t *testing.T) {
	sessions := session.NewRegistry()
	metrics := telemetry.NewMetrics()

	_, err := newScheduler(core.ScheduleConfig{SessionPurgeCron: "not a cron"}, sessions, metrics, logsvc.NewLoggerMock())
	assert.Error(t, err)

	c, err := newScheduler(core.ScheduleConfig{SessionPurgeCron: "0 3 * * *"}, sessions, metrics, logsvc.NewLoggerMock())
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	next := c.Entries()[0].Schedule.Next(time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local))
	assert.Equal(t, time.Date(2025, 3, 11, 3, 0, 0, 0, time.Local), next)
}
