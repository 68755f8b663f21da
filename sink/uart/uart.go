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

// Package uart implements a line-oriented event sink over a serial port,
// for feeding displays and loggers attached the way the original capture
// head's serial console was.
package uart

import (
	"fmt"
	"sync"

	probemon "github.com/ProbeMonProject/go-probemon"
	"go.bug.st/serial"
)

// Sink writes one text line per event to a serial port.
type Sink struct {
	port     serial.Port
	portName string
	mu       sync.Mutex
}

// New opens a serial sink on the given port at 115200 8N1.
func New(portName string) (*Sink, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sink port %s: %w", portName, err)
	}
	return &Sink{port: port, portName: portName}, nil
}

// Sighting implements probemon.Sink.
func (s *Sink) Sighting(event probemon.SightingEvent) error {
	return s.writeLine(event.String())
}

// SweepComplete implements probemon.Sink.
func (s *Sink) SweepComplete(event probemon.SweepEvent) error {
	return s.writeLine(event.String())
}

func (s *Sink) writeLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.port.Write([]byte(line + "\r\n")); err != nil {
		return probemon.NewTransportError("writeLine", s.portName, err, probemon.ErrorTypeTransient)
	}
	return nil
}

// Close implements probemon.Sink.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close sink port: %w", err)
	}
	return nil
}
