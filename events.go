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

package probemon

import (
	"fmt"
	"io"
	"sync"
)

// SightingEvent reports one not-yet-seen identity within the current
// sweep window.
type SightingEvent struct {
	MAC            string `json:"mac"`
	SignalStrength int    `json:"rssi"`
	Channel        uint8  `json:"channel"`
	// TotalCount is the seen-buffer size including this sighting.
	TotalCount int `json:"total_count"`
}

// String renders the line-oriented form emitted on serial-style sinks.
func (e SightingEvent) String() string {
	return fmt.Sprintf("MAC:%s RSSI:%d Channel:%d Count:%d",
		e.MAC, e.SignalStrength, e.Channel, e.TotalCount)
}

// SweepEvent reports one completed rotation across the channel range.
type SweepEvent struct {
	// TotalCount is the number of distinct identities seen during the
	// sweep, captured immediately before the buffer reset.
	TotalCount int `json:"total_count"`
}

// String renders the line-oriented form emitted on serial-style sinks.
func (e SweepEvent) String() string {
	return fmt.Sprintf("Sweep complete: %d", e.TotalCount)
}

// Sink receives sighting and sweep-summary events. Delivery is
// fire-and-forget from the control loop's perspective: errors are debug
// logged and never retried.
type Sink interface {
	// Sighting delivers one identity-sighting event.
	Sighting(event SightingEvent) error

	// SweepComplete delivers one sweep-summary event.
	SweepComplete(event SweepEvent) error

	// Close releases the sink's transport resources.
	Close() error
}

// MultiSink fans events out to several sinks. Delivery continues past
// individual sink failures; the first error is returned.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a fan-out sink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Sighting implements Sink.
func (m *MultiSink) Sighting(event SightingEvent) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Sighting(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SweepComplete implements Sink.
func (m *MultiSink) SweepComplete(event SweepEvent) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.SweepComplete(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every wrapped sink, returning the first error.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriterSink writes events as text lines to an io.Writer, one event per
// line. It serves stdout as well as any already-open serial port.
type WriterSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterSink creates a line-oriented sink over w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Sighting implements Sink.
func (s *WriterSink) Sighting(event SightingEvent) error {
	return s.writeLine(event.String())
}

// SweepComplete implements Sink.
func (s *WriterSink) SweepComplete(event SweepEvent) error {
	return s.writeLine(event.String())
}

func (s *WriterSink) writeLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		return fmt.Errorf("write event line: %w", err)
	}
	return nil
}

// Close implements Sink. The underlying writer is not owned and stays
// open.
func (*WriterSink) Close() error {
	return nil
}

// MockSink records delivered events for testing.
type MockSink struct {
	sightingErr error
	sweepErr    error
	sightings   []SightingEvent
	sweeps      []SweepEvent
	mu          sync.Mutex
	closed      bool
}

// NewMockSink creates an empty recording sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Sighting implements Sink.
func (m *MockSink) Sighting(event SightingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sightingErr != nil {
		return m.sightingErr
	}
	m.sightings = append(m.sightings, event)
	return nil
}

// SweepComplete implements Sink.
func (m *MockSink) SweepComplete(event SweepEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sweepErr != nil {
		return m.sweepErr
	}
	m.sweeps = append(m.sweeps, event)
	return nil
}

// Close implements Sink.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helper methods

// SetSightingError injects an error for subsequent Sighting calls.
func (m *MockSink) SetSightingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sightingErr = err
}

// SetSweepError injects an error for subsequent SweepComplete calls.
func (m *MockSink) SetSweepError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepErr = err
}

// Sightings returns a snapshot of delivered sighting events.
func (m *MockSink) Sightings() []SightingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SightingEvent, len(m.sightings))
	copy(out, m.sightings)
	return out
}

// Sweeps returns a snapshot of delivered sweep events.
func (m *MockSink) Sweeps() []SweepEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SweepEvent, len(m.sweeps))
	copy(out, m.sweeps)
	return out
}

// Closed reports whether Close was called.
func (m *MockSink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
