package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	minQRSize = 64
	maxQRSize = 2048
)

// qrcode writes a PNG of token, as the attendance service would display it.
func (cli *commandLine) qrcode(token, out string, size int) error {
	if size < minQRSize || size > maxQRSize {
		return errors.Errorf("size must be between %d and %d pixels", minQRSize, maxQRSize)
	}
	if err := qrcode.WriteFile(token, qrcode.Medium, size, out); err != nil {
		return errors.Wrap(err, "writing qr code")
	}
	fmt.Fprintf(cli.out, "wrote %s\n", out)
	return nil
}
