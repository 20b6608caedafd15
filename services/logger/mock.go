package logsvc

import (
	"io"
	"log"

	"github.com/rhazelina/qr-absence-sub000/core"
)

type loggerMock struct {
	RollbarLogger
}

var _ core.Logger = (*loggerMock)(nil)

// NewLoggerMock returns a logger that reports nothing to Rollbar and prints nowhere.
func NewLoggerMock() core.Logger {
	return &loggerMock{RollbarLogger: RollbarLogger{std: log.New(io.Discard, "", 0)}}
}

func (l loggerMock) Debug(msg string, args ...interface{}) { l.print(msg, args) }
func (l loggerMock) Info(msg string, args ...interface{})  { l.print(msg, args) }
func (l loggerMock) Warn(msg string, args ...interface{})  { l.print(msg, args) }
func (l loggerMock) Error(msg string, args ...interface{}) { l.print(msg, args) }
func (l loggerMock) Fatal(msg string, args ...interface{}) { l.print(msg, args) }
