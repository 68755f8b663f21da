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

package detection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// enumeratePorts returns serial ports with USB metadata where available.
func enumeratePorts(_ context.Context) ([]DeviceInfo, error) {
	usbPorts, err := usbSerialPorts()
	if err != nil {
		return portsFromGlobs()
	}
	if len(usbPorts) == 0 {
		return portsFromGlobs()
	}
	return usbPorts, nil
}

// usbSerialPorts walks /sys/class/tty looking for USB-backed entries.
func usbSerialPorts() ([]DeviceInfo, error) {
	const ttyDir = "/sys/class/tty"
	entries, err := os.ReadDir(ttyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", ttyDir, err)
	}

	var ports []DeviceInfo
	for _, entry := range entries {
		if port, ok := usbSerialPort(ttyDir, entry); ok {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

func usbSerialPort(ttyDir string, entry os.DirEntry) (DeviceInfo, bool) {
	if entry.IsDir() {
		return DeviceInfo{}, false
	}

	devicePath := filepath.Join(ttyDir, entry.Name(), "device")
	if _, err := os.Stat(devicePath); err != nil {
		return DeviceInfo{}, false
	}

	resolved, err := filepath.EvalSymlinks(devicePath)
	if err != nil || !strings.Contains(resolved, "/usb") {
		return DeviceInfo{}, false
	}

	port := DeviceInfo{
		Path: "/dev/" + entry.Name(),
		Name: entry.Name(),
	}
	readUSBAttributes(&port, resolved)
	return port, true
}

// readUSBAttributes walks up the sysfs device tree until it finds the
// USB device node carrying idVendor/idProduct.
func readUSBAttributes(port *DeviceInfo, devicePath string) {
	current := devicePath
	for i := 0; i < 10; i++ {
		if readUSBIdentifiers(port, current) {
			return
		}
		current = filepath.Dir(current)
		if current == "/" || current == "." {
			return
		}
	}
}

func readUSBIdentifiers(port *DeviceInfo, path string) bool {
	cleanPath := filepath.Clean(path)
	if !strings.HasPrefix(cleanPath, "/sys/") {
		return false
	}

	vidBytes, err := os.ReadFile(filepath.Join(cleanPath, "idVendor")) // #nosec G304 -- path is validated to be under /sys/
	if err != nil {
		return false
	}
	pidBytes, err := os.ReadFile(filepath.Join(cleanPath, "idProduct")) // #nosec G304 -- path is validated to be under /sys/
	if err != nil {
		return false
	}

	vid := strings.TrimSpace(string(vidBytes))
	pid := strings.TrimSpace(string(pidBytes))
	port.VIDPID = strings.ToUpper(vid + ":" + pid)

	// #nosec G304 -- path is validated to be under /sys/
	if b, err := os.ReadFile(filepath.Join(cleanPath, "manufacturer")); err == nil {
		port.Manufacturer = strings.TrimSpace(string(b))
	}
	// #nosec G304 -- path is validated to be under /sys/
	if b, err := os.ReadFile(filepath.Join(cleanPath, "product")); err == nil {
		port.Product = strings.TrimSpace(string(b))
	}
	// #nosec G304 -- path is validated to be under /sys/
	if b, err := os.ReadFile(filepath.Join(cleanPath, "serial")); err == nil {
		port.SerialNumber = strings.TrimSpace(string(b))
	}
	return true
}

// portsFromGlobs enumerates by device-path pattern when sysfs metadata
// is unavailable.
func portsFromGlobs() ([]DeviceInfo, error) {
	patterns := []string{
		"/dev/ttyUSB*",
		"/dev/ttyACM*",
		"/dev/ttyAMA*",
	}

	var ports []DeviceInfo
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			if _, err := os.Stat(path); err == nil {
				ports = append(ports, DeviceInfo{
					Path: path,
					Name: filepath.Base(path),
				})
			}
		}
	}
	return ports, nil
}
