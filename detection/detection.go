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

// Package detection locates serial-attached capture heads without
// opening them. Detection is purely descriptor based: ports are ranked
// by the USB-serial bridge chips the supported capture heads ship with,
// and no bytes are ever written to a candidate port.
package detection

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DeviceInfo describes one candidate capture head port.
type DeviceInfo struct {
	// Path is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	Path string
	// Name is the short device name.
	Name string
	// VIDPID is the USB vendor:product pair in upper-case hex, empty
	// for built-in ports.
	VIDPID string
	// Manufacturer and Product are the USB string descriptors when
	// readable.
	Manufacturer string
	Product      string
	SerialNumber string
}

// String returns a human-readable representation of the device.
func (d DeviceInfo) String() string {
	if d.VIDPID != "" {
		return fmt.Sprintf("%s (%s)", d.Path, d.VIDPID)
	}
	return d.Path
}

// Options configures detection behavior.
type Options struct {
	// Blocklist holds USB VID:PID pairs to skip, e.g. ["1234:5678"].
	Blocklist []string
	// IgnorePaths holds device paths to skip, e.g. ["/dev/ttyS0"].
	IgnorePaths []string
}

// ErrNoDevicesFound indicates no candidate capture heads were detected.
var ErrNoDevicesFound = errors.New("no capture head candidates found")

// knownBridges lists the USB-serial bridge chips the supported capture
// heads ship with. Ports with one of these identifiers sort first.
var knownBridges = map[string]string{
	"10C4:EA60": "Silicon Labs CP210x",
	"1A86:7523": "QinHeng CH340",
	"0403:6001": "FTDI FT232",
}

// Detect enumerates serial ports and returns candidates, ranked with
// known USB-serial bridges first. It returns ErrNoDevicesFound when
// nothing survives filtering.
func Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = &Options{}
	}

	ports, err := enumeratePorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	devices := filterAndRank(ports, opts)
	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	return devices, nil
}

// filterAndRank drops blocked and ignored ports, then sorts known
// USB-serial bridges ahead of everything else.
func filterAndRank(ports []DeviceInfo, opts *Options) []DeviceInfo {
	var known, other []DeviceInfo
	for _, port := range ports {
		if isPathIgnored(port.Path, opts.IgnorePaths) {
			continue
		}
		if port.VIDPID != "" && isBlocked(port.VIDPID, opts.Blocklist) {
			continue
		}
		if _, ok := knownBridges[port.VIDPID]; ok {
			known = append(known, port)
		} else {
			other = append(other, port)
		}
	}
	return append(known, other...)
}

// First returns the single best candidate.
func First(ctx context.Context, opts *Options) (DeviceInfo, error) {
	devices, err := Detect(ctx, opts)
	if err != nil {
		return DeviceInfo{}, err
	}
	return devices[0], nil
}

// isBlocked reports whether a VID:PID pair appears in the blocklist.
// Comparison is case-insensitive.
func isBlocked(vidpid string, blocklist []string) bool {
	for _, blocked := range blocklist {
		if strings.EqualFold(vidpid, blocked) {
			return true
		}
	}
	return false
}

// isPathIgnored reports whether a device path appears in the ignore
// list. Paths compare case-insensitively so "COM3" matches "com3".
func isPathIgnored(path string, ignorePaths []string) bool {
	for _, ignored := range ignorePaths {
		if strings.EqualFold(path, ignored) {
			return true
		}
	}
	return false
}
