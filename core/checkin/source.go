package checkin

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrTorchUnsupported  = errors.New("torch not supported by device")
	ErrSourceClosed      = errors.New("scan source closed")
)

// DeviceError reports a capture device that could not be acquired.
// It matches ErrDeviceUnavailable with errors.Is.
type DeviceError struct {
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	return "opening " + e.Path + ": " + ErrDeviceUnavailable.Error() + ": " + e.Err.Error()
}

func (e *DeviceError) Unwrap() error { return e.Err }

func (e *DeviceError) Is(target error) bool { return target == ErrDeviceUnavailable }

// Source is a continuous code decoding feed.
type Source interface {
	// Start acquires the device and begins decoding. It is a no-op once started.
	Start(ctx context.Context) error
	// Pause stops emitting decodes until Resume.
	Pause()
	Resume()
	// Decoded yields one token per successful decode; the same code may be decoded many times.
	Decoded() <-chan Token
	SetTorch(on bool) error
	// Stop releases the device. It is idempotent.
	Stop() error
}

// Submitter sends a token to the attendance service.
// It makes a single attempt and never retries.
type Submitter interface {
	Submit(ctx context.Context, token Token, role Role) Outcome
}
