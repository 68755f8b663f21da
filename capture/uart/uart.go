// Copyright 2026 The ProbeMon Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package uart implements a capture source reading framed records from
// a serial-attached capture head.
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/capture"
	"github.com/ProbeMonProject/go-probemon/internal/wire"
	"go.bug.st/serial"
)

// Source reads capture records from a serial port. The capture head
// streams one wire record per received frame: 12 bytes of RX metadata
// followed by the fixed-length frame payload.
type Source struct {
	port     serial.Port
	stream   io.Reader
	portName string
	running  atomic.Bool
	closed   atomic.Bool
}

// New opens a serial capture source on the given port at 115200 8N1.
func New(portName string) (*Source, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		// Ports are frequently busy or still enumerating right after a
		// head reset; callers may retry opening.
		return nil, probemon.NewTransportError("open", portName, err, probemon.ErrorTypeTransient)
	}

	if err := port.SetReadTimeout(50 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set capture read timeout: %w", err)
	}

	return &Source{
		port:     port,
		stream:   port,
		portName: portName,
	}, nil
}

// NewFromReader creates a source over an arbitrary byte stream. Used by
// tests and by deployments that pipe capture records from elsewhere.
func NewFromReader(r io.Reader, name string) *Source {
	return &Source{
		stream:   r,
		portName: name,
	}
}

// Start implements capture.Source. Corrupt records are skipped after a
// resynchronization on the next record magic; they are indistinguishable
// from frames that were never received. Read failures and stream end
// stop the source.
func (s *Source) Start(ctx context.Context, handler capture.Handler) error {
	if !s.running.CompareAndSwap(false, true) {
		return probemon.ErrSourceRunning
	}
	defer s.running.Store(false)

	reader := wire.NewReader(s.stream)
	for {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // context cancellation is the caller's own signal
		}

		typ, body, err := reader.Next()
		switch {
		case err == nil:
		case errors.Is(err, wire.ErrChecksumMismatch), errors.Is(err, wire.ErrOversizedRecord):
			probemon.Debugf("capture record dropped: %v", err)
			continue
		case errors.Is(err, io.ErrNoProgress):
			// Idle port: the read timeout elapsed with no data. Loop so
			// the context check above runs.
			continue
		default:
			if ctx.Err() != nil {
				return ctx.Err() //nolint:wrapcheck // context cancellation is the caller's own signal
			}
			if s.closed.Load() {
				return probemon.ErrTransportClosed
			}
			return probemon.NewTransportError("readRecord", s.portName, err, probemon.ErrorTypePermanent)
		}

		if typ != wire.RecordCapture {
			continue
		}
		s.deliver(body, handler)
	}
}

// deliver decodes one capture record body and hands the frame to the
// handler. Undersized bodies are dropped like any other corrupt record.
func (s *Source) deliver(body []byte, handler capture.Handler) {
	meta, err := DecodeRxMeta(body)
	if err != nil {
		probemon.Debugf("capture record dropped: %v", err)
		return
	}
	payload := body[RxMetaLength:]
	if len(payload) < probemon.PayloadLength {
		probemon.Debugf("capture record dropped: short payload %d", len(payload))
		return
	}

	handler(probemon.Frame{
		Payload:        payload,
		SignalStrength: int(meta.RSSI),
		Channel:        meta.Channel,
	})
}

// Close implements capture.Source.
func (s *Source) Close() error {
	s.closed.Store(true)
	if s.port == nil {
		return nil
	}
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close capture port: %w", err)
	}
	return nil
}

// Type implements capture.Source.
func (*Source) Type() string {
	return "uart"
}
