package relay

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// LCUS style USB relay boards take a four byte frame per channel:
// 0xA0, channel (1-based), state, checksum (sum of the first three bytes).
const (
	frameHeader = 0xA0
	stateOff    = 0x00
	stateOn     = 0x01
)

// SerialBoard drives a USB serial relay board.
type SerialBoard struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// OpenSerialBoard opens portName (e.g. /dev/ttyUSB0) at baud 8N1.
func OpenSerialBoard(portName string, baud int) (*SerialBoard, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("relay board: open %s: %w", portName, err)
	}
	return NewSerialBoard(port), nil
}

// NewSerialBoard wraps an already opened port.
func NewSerialBoard(port io.WriteCloser) *SerialBoard {
	return &SerialBoard{port: port}
}

func frame(index int, on bool) []byte {
	state := byte(stateOff)
	if on {
		state = stateOn
	}
	ch := byte(index + 1)
	return []byte{frameHeader, ch, state, frameHeader + ch + state}
}

func (b *SerialBoard) write(index int, on bool) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.port.Write(frame(index, on)); err != nil {
		return fmt.Errorf("relay board: write channel %d: %w", index+1, err)
	}
	return nil
}

func (b *SerialBoard) Open(_ context.Context, index int) error  { return b.write(index, true) }
func (b *SerialBoard) Close(_ context.Context, index int) error { return b.write(index, false) }
func (b *SerialBoard) CloseAll(ctx context.Context) error       { return forEach(ctx, b.Close) }
func (b *SerialBoard) OpenAll(ctx context.Context) error        { return forEach(ctx, b.Open) }

// Shutdown closes the serial port.
func (b *SerialBoard) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}
