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

//go:build linux

package afpacket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/capture"
	"golang.org/x/sys/unix"
)

// snapLength bounds one read; a radiotap header plus any management
// frame fits comfortably.
const snapLength = 4096

// Source captures raw 802.11 frames from a monitor-mode interface via
// an AF_PACKET socket. The kernel prepends a radiotap header, which is
// decoded for signal strength and channel before the frame body is
// delivered.
type Source struct {
	iface   string
	fd      int
	running atomic.Bool
	closed  atomic.Bool
}

// New opens an AF_PACKET capture socket bound to the named interface.
// The interface must already be in monitor mode.
func New(iface string) (*Source, error) {
	proto := htons(unix.ETH_P_ALL)

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("failed to open AF_PACKET socket: %w", err)
	}

	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: %s", probemon.ErrDeviceNotFound, iface)
	}

	if err := unix.Bind(fd, &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  ifi.Index,
	}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to bind to %s: %w", iface, err)
	}

	// Periodic read timeouts keep the capture loop responsive to
	// context cancellation.
	tv := unix.Timeval{Usec: 100_000}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to set receive timeout: %w", err)
	}

	return &Source{iface: iface, fd: fd}, nil
}

// Start implements capture.Source.
func (s *Source) Start(ctx context.Context, handler capture.Handler) error {
	if !s.running.CompareAndSwap(false, true) {
		return probemon.ErrSourceRunning
	}
	defer s.running.Store(false)

	buf := make([]byte, snapLength)
	for {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // context cancellation is the caller's own signal
		}

		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			if s.closed.Load() {
				return probemon.ErrTransportClosed
			}
			return probemon.NewTransportError("recvfrom", s.iface, err, probemon.ErrorTypePermanent)
		}

		s.deliver(buf[:n], handler)
	}
}

// deliver strips the radiotap header and hands the 802.11 frame to the
// handler. Frames without a decodable header are dropped silently.
func (s *Source) deliver(pkt []byte, handler capture.Handler) {
	info, err := capture.DecodeRadiotap(pkt)
	if err != nil {
		probemon.Debugf("radiotap decode failed: %v", err)
		return
	}

	frame := probemon.Frame{Payload: pkt[info.HeaderLength:]}
	if info.HasSignal {
		frame.SignalStrength = int(info.SignalDBm)
	}
	if info.HasFrequency {
		frame.Channel = capture.FrequencyToChannel(info.FrequencyMHz)
	}
	handler(frame)
}

// Close implements capture.Source.
func (s *Source) Close() error {
	s.closed.Store(true)
	if err := unix.Close(s.fd); err != nil {
		return fmt.Errorf("failed to close capture socket: %w", err)
	}
	return nil
}

// Type implements capture.Source.
func (*Source) Type() string {
	return "afpacket"
}

// htons converts a short to network byte order.
func htons(v uint16) uint16 {
	return v<<8 | v>>8
}
