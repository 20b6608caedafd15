package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/checkin"
	"github.com/rhazelina/qr-absence-sub000/core/session"
	"github.com/rhazelina/qr-absence-sub000/services/attendance"
	"github.com/rhazelina/qr-absence-sub000/services/scanner"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	metrics *telemetry.Metrics
	out     io.Writer

	validate   *validator.Validate
	translator ut.Translator

	newSource    func(conf core.ScannerConfig, logger core.Logger) checkin.Source // mockable
	newSubmitter func(conf core.AttendanceConfig) checkin.Submitter               // mockable
}

func newCommandLine(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	out io.Writer,
) *commandLine {
	return &commandLine{
		conf:       conf,
		logger:     logger,
		metrics:    telemetry.NewMetrics(),
		out:        out,
		validate:   validate,
		translator: translator,
		newSource: func(conf core.ScannerConfig, logger core.Logger) checkin.Source {
			return scanner.NewLineDevice(conf, logger)
		},
		newSubmitter: func(conf core.AttendanceConfig) checkin.Submitter {
			return attendance.NewClient(conf)
		},
	}
}

// dropCounter is a source counting the codes it discarded while paused.
type dropCounter interface {
	Dropped() int
}

type scanOptions struct {
	key         session.Key
	role        checkin.Role
	device      string
	torch       bool
	metricsAddr string
}

func (cli *commandLine) printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  agent -subject SUBJECT -class CLASS -slot HH:MM-HH:MM [-date YYYY-MM-DD] [-role student|teacher]")
	fmt.Fprintln(cli.out, "        [-device PATH] [-torch] [-metrics ADDR]")
	fs.PrintDefaults()
}

func (cli *commandLine) parse(args []string) (scanOptions, error) {
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	fs.SetOutput(cli.out)
	subject := fs.String("subject", "", "Subject of the teaching session.")
	class := fs.String("class", "", "Class of the teaching session.")
	slot := fs.String("slot", "", "Time slot of the teaching session, e.g. 07:30-09:00.")
	date := fs.String("date", time.Now().Format("2006-01-02"), "Day of the teaching session.")
	role := fs.String("role", checkin.RoleStudent.String(), "Who checks in on this screen: student or teacher.")
	device := fs.String("device", cli.conf.Scanner.Device, "Scanner device to read codes from; - reads stdin.")
	torch := fs.Bool("torch", false, "Turn the scanner torch on while scanning.")
	metricsAddr := fs.String("metrics", "", "Serve Prometheus metrics on this address.")

	if len(args) < 2 {
		cli.printUsage(fs)
		return scanOptions{}, errHelp
	}
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return scanOptions{}, errHelp
		}
		return scanOptions{}, err
	}

	day, err := time.Parse("2006-01-02", core.CleanString(*date))
	if err != nil {
		return scanOptions{}, errors.Errorf("date must be a date like 2006-01-02 (got %q)", *date)
	}
	r, err := checkin.ParseRole(*role)
	if err != nil {
		return scanOptions{}, err
	}

	key := session.NewKey(*subject, *class, *slot, day)
	if err = cli.validate.Struct(key); err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return scanOptions{}, err
		}
		fldErrs := core.TranslateErrors(vErrs, cli.translator)
		msgs := make([]string, 0, len(fldErrs))
		for _, msg := range fldErrs {
			msgs = append(msgs, msg)
		}
		sort.Strings(msgs)
		return scanOptions{}, errors.Errorf("invalid session: %s", strings.Join(msgs, "; "))
	}

	return scanOptions{key: key, role: r, device: *device, torch: *torch, metricsAddr: *metricsAddr}, nil
}

// run scans for the session described by args until a check-in is accepted.
// visibility carries true to show the screen and false to hide it.
func (cli *commandLine) run(ctx context.Context, args []string, visibility <-chan bool) error {
	opts, err := cli.parse(args)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(opts.metricsAddr, cli.metrics.Handler()); err != nil {
				cli.logger.Error(fmt.Sprintf("metrics server closed: %v", err), err)
			}
		}()
	}

	scanConf := cli.conf.Scanner
	scanConf.Device = opts.device
	source := cli.newSource(scanConf, cli.logger)
	submitter := cli.newSubmitter(cli.conf.Attendance)

	m := session.NewMachine(opts.key)
	screen := checkin.NewScreen(m, source, submitter, opts.role, cli.logger, func(out checkin.Outcome) {
		cli.metrics.ObserveOutcome(out)
		fmt.Fprintln(cli.out, out.Notice())
	})
	defer func() {
		cli.metrics.ObserveDropped(telemetry.StageGate, screen.Gate().Dropped())
		if c, ok := source.(dropCounter); ok {
			cli.metrics.ObserveDropped(telemetry.StageSource, c.Dropped())
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watchVisibility(runCtx, screen, visibility)

	fmt.Fprintf(cli.out, "Check-in for %s (%s)\n", opts.key, opts.role)
	if (opts.device == scanner.Stdin || opts.device == "") && isTerminalFunc(int(os.Stdin.Fd())) {
		fmt.Fprintln(cli.out, "Scan a code, or type it and press Enter.")
	}

	// the source turns the torch off when the screen stops
	if opts.torch {
		if err := screen.SetTorch(true); err != nil {
			cli.logger.Warn(fmt.Sprintf("turning torch on: %v", err), err)
		}
	}

	return screen.Run(runCtx)
}

func watchVisibility(ctx context.Context, screen *checkin.Screen, visibility <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case visible, ok := <-visibility:
			if !ok {
				return
			}
			screen.SetVisible(visible)
		}
	}
}
