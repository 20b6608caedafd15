package scanner

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/checkin"
)

func TestLineDevice_RestartKeepsSharedInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	pump := newLinePump(pr)

	dev := newTestDevice(core.ScannerConfig{Device: Stdin})
	dev.open = func(string) (io.ReadCloser, error) { return pump.reader(), nil }

	require.NoError(t, dev.Start(context.Background()))
	go func() { _, _ = io.WriteString(pw, "first\n") }()
	assert.Equal(t, checkin.Token("first"), receive(t, dev.Decoded()))
	require.NoError(t, dev.Stop())

	require.NoError(t, dev.Start(context.Background()))
	go func() { _, _ = io.WriteString(pw, "second\n") }()
	assert.Equal(t, checkin.Token("second"), receive(t, dev.Decoded()), "no line lost to the stopped reader")
	require.NoError(t, dev.Stop())
}

func TestLinePump_EndOfInput(t *testing.T) {
	pr, pw := io.Pipe()
	pump := newLinePump(pr)
	r := pump.reader()

	go func() {
		_, _ = io.WriteString(pw, "a\nb\n")
		_ = pw.Close()
	}()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))

	// later readers see the end too
	data, err = io.ReadAll(pump.reader())
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}
