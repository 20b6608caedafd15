package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/checkin"
	logsvc "github.com/rhazelina/qr-absence-sub000/services/logger"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
)

func main() {
	os.Exit(start())
}

func start() int {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "AGENT : ", log.LstdFlags|log.Lmicroseconds), conf)

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	shutdownTracing := telemetry.Setup("absence-agent", conf, logger)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("flushing traces: %v", err), err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGUSR1 hides the screen, SIGUSR2 shows it again
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)
	visibility := make(chan bool)
	go func() {
		for sig := range sigs {
			select {
			case visibility <- sig == syscall.SIGUSR2:
			case <-ctx.Done():
				return
			}
		}
	}()

	cli := newCommandLine(conf, logger, validate, translator, os.Stdout)
	err := cli.run(ctx, os.Args, visibility)
	switch {
	case err == nil:
		return 0
	case err == errHelp:
		return 2
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, checkin.ErrSessionNotOpen), errors.Is(err, checkin.ErrDeviceUnavailable):
		fmt.Fprintln(os.Stderr, err)
		return 1
	default:
		logger.Error(fmt.Sprintf("agent: %v", err), err)
		return 1
	}
}
