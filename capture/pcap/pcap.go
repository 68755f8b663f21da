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

// Package pcap implements a capture source over libpcap for platforms
// where AF_PACKET is unavailable or a capture file is replayed.
package pcap

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/capture"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// snapLength bounds one captured packet.
const snapLength = 2048

// Source captures 802.11 frames through a libpcap handle on a
// monitor-mode interface.
type Source struct {
	handle  *pcap.Handle
	device  string
	running atomic.Bool
}

// New opens a live capture on the named monitor-mode interface.
func New(device string) (*Source, error) {
	handle, err := pcap.OpenLive(device, snapLength, true, 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap handle on %s: %w", device, err)
	}
	return &Source{handle: handle, device: device}, nil
}

// Start implements capture.Source.
func (s *Source) Start(ctx context.Context, handler capture.Handler) error {
	if !s.running.CompareAndSwap(false, true) {
		return probemon.ErrSourceRunning
	}
	defer s.running.Store(false)

	source := gopacket.NewPacketSource(s.handle, s.handle.LinkType())
	packets := source.Packets()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // context cancellation is the caller's own signal
		case packet, ok := <-packets:
			if !ok {
				return probemon.NewTransportError("capture", s.device,
					probemon.ErrTransportClosed, probemon.ErrorTypePermanent)
			}
			s.deliver(packet, handler)
		}
	}
}

// deliver extracts radio metadata from the radiotap layer and hands the
// raw 802.11 frame to the handler.
func (s *Source) deliver(packet gopacket.Packet, handler capture.Handler) {
	rtLayer := packet.Layer(layers.LayerTypeRadioTap)
	rt, ok := rtLayer.(*layers.RadioTap)
	if !ok {
		return
	}

	handler(probemon.Frame{
		Payload:        rt.Payload,
		SignalStrength: int(rt.DBMAntennaSignal),
		Channel:        capture.FrequencyToChannel(uint16(rt.ChannelFrequency)),
	})
}

// Close implements capture.Source.
func (s *Source) Close() error {
	s.handle.Close()
	return nil
}

// Type implements capture.Source.
func (*Source) Type() string {
	return "pcap"
}
