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

// Package spi implements a binary event sink over an SPI link, for
// driving downstream microcontrollers such as display or relay boards.
// Events are framed with the same record codec the capture head uses.
package spi

import (
	"fmt"
	"sync"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/internal/wire"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	defaultFreq = 1 * physic.MegaHertz
	mode        = spi.Mode0
)

// Sink writes framed event records to an SPI port.
type Sink struct {
	port     spi.PortCloser
	conn     spi.Conn
	portName string
	mu       sync.Mutex
}

// New opens an SPI sink on the named port.
func New(portName string) (*Sink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(defaultFreq, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	return &Sink{port: port, conn: conn, portName: portName}, nil
}

// Sighting implements probemon.Sink.
func (s *Sink) Sighting(event probemon.SightingEvent) error {
	mac, err := probemon.ParseMAC(event.MAC)
	if err != nil {
		return fmt.Errorf("encode sighting record: %w", err)
	}

	body := wire.EncodeSightingBody(
		mac,
		int8(event.SignalStrength),
		event.Channel,
		uint16(event.TotalCount), //nolint:gosec // count is bounded by buffer capacity
	)
	return s.write(wire.RecordSighting, body)
}

// SweepComplete implements probemon.Sink.
func (s *Sink) SweepComplete(event probemon.SweepEvent) error {
	body := wire.EncodeSweepBody(uint16(event.TotalCount)) //nolint:gosec // count is bounded by buffer capacity
	return s.write(wire.RecordSweep, body)
}

func (s *Sink) write(typ byte, body []byte) error {
	record := wire.EncodeRecord(typ, body)

	s.mu.Lock()
	defer s.mu.Unlock()

	rx := make([]byte, len(record))
	if err := s.conn.Tx(record, rx); err != nil {
		return probemon.NewTransportError("tx", s.portName, err, probemon.ErrorTypeTransient)
	}
	return nil
}

// Close implements probemon.Sink.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	return nil
}
