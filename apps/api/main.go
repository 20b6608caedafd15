package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	dig_container "github.com/rhazelina/qr-absence-sub000/apps/api/di/dig"
	echoapi "github.com/rhazelina/qr-absence-sub000/apps/api/echo"
	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	"github.com/rhazelina/qr-absence-sub000/core/session"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *sqlx.DB,
		validate *validator.Validate,
		translator ut.Translator,
		sessions *session.Registry,
		metrics *telemetry.Metrics,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		core.InitValidators(validate, translator)
		leave.InitValidators(validate, translator)

		core.ParseEmailTemplates(apiLogger, conf.Debug)

		shutdownTracing := telemetry.Setup("absence-api", conf, apiLogger)

		if db != nil {
			dbLogger := dbLoggerParam.Logger
			defer func() {
				if err := db.Close(); err != nil {
					dbLogger.Fatal("Failed to close", err)
				}
			}()
		}
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.
		// /metrics - Prometheus metrics.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		http.DefaultServeMux.Handle("/metrics", metrics.Handler())

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start Scheduler

		scheduler, err := newScheduler(conf.Schedule, sessions, metrics, apiLogger)
		if err != nil {
			apiLogger.Fatal(fmt.Sprintf("scheduling session purge: %v", err), err)
		}
		scheduler.Start()

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// let a running purge finish
			<-scheduler.Stop().Done()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}

			if err := shutdownTracing(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("flushing traces: %v", err), err)
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// newScheduler runs the nightly purge of sessions whose day is over.
func newScheduler(conf core.ScheduleConfig, sessions *session.Registry, metrics *telemetry.Metrics, logger core.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(conf.SessionPurgeCron, func() {
		purgeSessions(sessions, metrics, logger, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func purgeSessions(sessions *session.Registry, metrics *telemetry.Metrics, logger core.Logger, now time.Time) int {
	n := sessions.PurgeBefore(now)
	metrics.ObservePurge(n)
	if n > 0 {
		logger.Info(fmt.Sprintf("purged %d stale sessions", n))
	}
	return n
}
