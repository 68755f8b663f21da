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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/capture"
	"github.com/ProbeMonProject/go-probemon/capture/afpacket"
	"github.com/ProbeMonProject/go-probemon/capture/pcap"
	captureuart "github.com/ProbeMonProject/go-probemon/capture/uart"
	"github.com/ProbeMonProject/go-probemon/detection"
	"github.com/ProbeMonProject/go-probemon/monitor"
	sinkspi "github.com/ProbeMonProject/go-probemon/sink/spi"
	sinkuart "github.com/ProbeMonProject/go-probemon/sink/uart"
)

type config struct {
	configPath  string
	device      string
	captureType string
	serialSink  string
	spiSink     string
	debug       bool
}

// Package-level flag variables
var (
	flagConfigPath  string
	flagDevice      string
	flagCaptureType string
	flagSerialSink  string
	flagSPISink     string
	flagDebug       bool
)

func init() {
	flag.StringVar(&flagConfigPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&flagDevice, "device", "",
		"Capture device: serial port for uart, interface name for afpacket/pcap (auto-detect uart if empty)")
	flag.StringVar(&flagCaptureType, "capture", "uart", "Capture source type: uart, afpacket or pcap")
	flag.StringVar(&flagSerialSink, "serial-sink", "", "Serial port to mirror events to (optional)")
	flag.StringVar(&flagSPISink, "spi-sink", "", "SPI port to mirror binary events to (optional)")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func parseConfig() *config {
	cfg := &config{
		configPath:  flagConfigPath,
		device:      flagDevice,
		captureType: flagCaptureType,
		serialSink:  flagSerialSink,
		spiSink:     flagSPISink,
		debug:       flagDebug,
	}

	if cfg.debug {
		probemon.SetDebugEnabled(true)
	}

	return cfg
}

// loadMonitorConfig resolves the monitor configuration from the config
// file, or defaults when no file is given.
func loadMonitorConfig(cfg *config) (*probemon.Config, error) {
	if cfg.configPath == "" {
		return probemon.DefaultConfig(), nil
	}
	mc, err := probemon.LoadConfigFile(cfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", cfg.configPath, err)
	}
	return mc, nil
}

// newCaptureSource creates the capture source selected on the command
// line. An empty device with the uart source triggers auto-detection.
func newCaptureSource(ctx context.Context, cfg *config) (capture.Source, error) {
	switch cfg.captureType {
	case "uart":
		path := cfg.device
		if path == "" {
			device, err := detection.First(ctx, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to auto-detect capture head: %w", err)
			}
			if cfg.debug {
				_, _ = fmt.Printf("Auto-detected capture head: %s\n", device)
			}
			path = device.Path
		}
		// Serial ports can be briefly busy after a head reset, so the
		// open is retried with backoff.
		var source *captureuart.Source
		err := probemon.RetryWithConfig(ctx, nil, func() error {
			var openErr error
			source, openErr = captureuart.New(path)
			return openErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create UART capture source: %w", err)
		}
		return source, nil
	case "afpacket":
		if cfg.device == "" {
			return nil, errors.New("afpacket capture requires -device with a monitor-mode interface")
		}
		source, err := afpacket.New(cfg.device)
		if err != nil {
			return nil, fmt.Errorf("failed to create AF_PACKET capture source: %w", err)
		}
		return source, nil
	case "pcap":
		if cfg.device == "" {
			return nil, errors.New("pcap capture requires -device with a monitor-mode interface")
		}
		source, err := pcap.New(cfg.device)
		if err != nil {
			return nil, fmt.Errorf("failed to create pcap capture source: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unsupported capture type: %s", cfg.captureType)
	}
}

// newSink builds the event sink stack: stdout always, plus the optional
// serial and SPI mirrors.
func newSink(cfg *config) (probemon.Sink, error) {
	sinks := []probemon.Sink{probemon.NewWriterSink(os.Stdout)}

	if cfg.serialSink != "" {
		s, err := sinkuart.New(cfg.serialSink)
		if err != nil {
			return nil, fmt.Errorf("failed to create serial sink: %w", err)
		}
		sinks = append(sinks, s)
	}

	if cfg.spiSink != "" {
		s, err := sinkspi.New(cfg.spiSink)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI sink: %w", err)
		}
		sinks = append(sinks, s)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return probemon.NewMultiSink(sinks...), nil
}

func run(ctx context.Context, cfg *config) error {
	monitorCfg, err := loadMonitorConfig(cfg)
	if err != nil {
		return err
	}

	source, err := newCaptureSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close capture source: %v\n", err)
		}
	}()

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close sink: %v\n", err)
		}
	}()

	session, err := monitor.NewSession(monitorCfg, probemon.NopRadio{}, sink)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close session: %v\n", err)
		}
	}()

	_, _ = fmt.Printf("Monitoring probe requests on %s capture. Press Ctrl+C to stop...\n", source.Type())

	done := make(chan error, 2)
	go func() {
		done <- source.Start(ctx, session.HandleFrame)
	}()
	go func() {
		done <- session.Run(ctx)
	}()

	// The first finisher decides the outcome; the context takes the
	// other goroutine down with it.
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("monitoring stopped: %w", err)
		}
		return err //nolint:wrapcheck // context cancellation passes through for the exit-code check
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // context cancellation passes through for the exit-code check
	}
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	cfg := parseConfig()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_, _ = fmt.Print("\nShutting down gracefully...\n")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
