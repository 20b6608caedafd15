package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/checkin"
)

// Stdin is the device path reading codes from the standard input.
const Stdin = "-"

// LineDevice reads codes from a keyboard-wedge or serial barcode reader:
// every non-empty line is one decode.
type LineDevice struct {
	path      string
	torchPath string
	logger    core.Logger
	open      func(path string) (io.ReadCloser, error) // mockable

	mu      sync.Mutex
	started bool
	paused  bool
	torchOn bool
	dropped int
	rc      io.ReadCloser
	decoded chan checkin.Token
	done    chan struct{}
}

var _ checkin.Source = (*LineDevice)(nil) // interface compliance check

func NewLineDevice(conf core.ScannerConfig, logger core.Logger) *LineDevice {
	return &LineDevice{
		path:      conf.Device,
		torchPath: conf.TorchPath,
		logger:    logger,
		open:      openDevice,
		decoded:   make(chan checkin.Token),
	}
}

func openDevice(path string) (io.ReadCloser, error) {
	if path == Stdin || path == "" {
		return stdinPump.reader(), nil
	}
	return os.Open(path)
}

func (d *LineDevice) Start(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}
	rc, err := d.open(d.path)
	if err != nil {
		return &checkin.DeviceError{Path: d.path, Err: err}
	}

	if d.done != nil { // restarted after Stop
		d.decoded = make(chan checkin.Token)
	}
	d.rc = rc
	d.done = make(chan struct{})
	d.started = true
	d.paused = false

	go d.read(rc, d.decoded, d.done)
	return nil
}

func (d *LineDevice) read(r io.Reader, decoded chan<- checkin.Token, done <-chan struct{}) {
	defer close(decoded)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || d.dropIfPaused() {
			continue
		}
		select {
		case decoded <- checkin.Token(line):
		case <-done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-done: // closed by Stop
		default:
			d.logger.Error(fmt.Sprintf("reading scanner %s: %v", d.path, err), err)
		}
	}
}

func (d *LineDevice) dropIfPaused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused {
		d.dropped++
	}
	return d.paused
}

// Dropped counts the codes read while paused.
func (d *LineDevice) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *LineDevice) Pause() {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()
}

func (d *LineDevice) Resume() {
	d.mu.Lock()
	d.paused = false
	d.mu.Unlock()
}

// Decoded is closed when the device reaches end of input or is stopped.
func (d *LineDevice) Decoded() <-chan checkin.Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.decoded
}

// SetTorch drives the reader's illumination through its LED brightness file.
func (d *LineDevice) SetTorch(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setTorch(on)
}

func (d *LineDevice) setTorch(on bool) error {
	if d.torchPath == "" {
		return checkin.ErrTorchUnsupported
	}
	value := "0"
	if on {
		value = "1"
	}
	if err := os.WriteFile(d.torchPath, []byte(value), 0644); err != nil {
		return errors.Wrap(err, "setting torch")
	}
	d.torchOn = on
	return nil
}

func (d *LineDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		if d.torchOn {
			return d.setTorch(false)
		}
		return nil
	}
	d.started = false
	close(d.done)

	var err error
	if d.torchOn {
		err = d.setTorch(false)
	}
	if cErr := d.rc.Close(); cErr != nil && err == nil {
		err = errors.Wrap(cErr, "closing scanner")
	}
	return err
}
