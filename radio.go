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

import "sync"

// Radio is the external radio driver collaborator. The control loop
// only ever asks it to retune; channel-set failures are the driver's
// concern and are fire-and-forget from the core's perspective.
type Radio interface {
	// SetChannel retunes the radio to the given listening channel.
	SetChannel(channel uint8) error
}

// NopRadio discards channel changes. It serves deployments where the
// capture source controls its own tuning (e.g. a pcap handle on an
// interface managed externally).
type NopRadio struct{}

// SetChannel implements Radio.
func (NopRadio) SetChannel(uint8) error { return nil }

// MockRadio records channel changes for testing.
type MockRadio struct {
	err      error
	channels []uint8
	mu       sync.Mutex
}

// NewMockRadio creates an empty recording radio.
func NewMockRadio() *MockRadio {
	return &MockRadio{}
}

// SetChannel implements Radio.
func (m *MockRadio) SetChannel(channel uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.channels = append(m.channels, channel)
	return nil
}

// SetError injects an error for subsequent SetChannel calls.
func (m *MockRadio) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Channels returns a snapshot of the applied channel sequence.
func (m *MockRadio) Channels() []uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint8, len(m.channels))
	copy(out, m.channels)
	return out
}

// Last returns the most recently applied channel, or 0 if none.
func (m *MockRadio) Last() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) == 0 {
		return 0
	}
	return m.channels[len(m.channels)-1]
}
