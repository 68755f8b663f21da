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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values, matching the reference deployment.
const (
	DefaultCapacity       = 100
	DefaultSweepInterval  = 30 * time.Second
	DefaultInitialChannel = 1
	DefaultMinChannel     = 1
	DefaultMaxChannel     = 14
)

// Config holds the monitoring configuration. It is read once at startup
// and immutable for the process lifetime.
type Config struct {
	// Capacity bounds the seen-buffer. Must be at least 1.
	Capacity int

	// SweepInterval is the channel-hop cadence. Ignored in static mode.
	SweepInterval time.Duration

	// StaticMode disables the sweep timer entirely: the channel stays at
	// InitialChannel and no sweep boundaries ever occur.
	StaticMode bool

	// InitialChannel is the starting (and, in static mode, permanent)
	// listening channel.
	InitialChannel uint8

	// MinChannel and MaxChannel bound the sweep range, inclusive.
	MinChannel uint8
	MaxChannel uint8

	// IgnoreLocal drops locally administered addresses before
	// deduplication.
	IgnoreLocal bool
}

// DefaultConfig returns the reference deployment configuration:
// capacity 100, 30 second sweeps over channels 1..14 starting at 1.
func DefaultConfig() *Config {
	return &Config{
		Capacity:       DefaultCapacity,
		SweepInterval:  DefaultSweepInterval,
		InitialChannel: DefaultInitialChannel,
		MinChannel:     DefaultMinChannel,
		MaxChannel:     DefaultMaxChannel,
	}
}

// Validate rejects configurations that would make monitoring
// meaningless. A zero capacity in particular is refused rather than
// clamped, since it disables deduplication entirely.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.Capacity)
	}
	if c.MinChannel < 1 || c.MaxChannel < c.MinChannel {
		return fmt.Errorf("%w: range %d..%d", ErrInvalidChannel, c.MinChannel, c.MaxChannel)
	}
	if c.InitialChannel < c.MinChannel || c.InitialChannel > c.MaxChannel {
		return fmt.Errorf("%w: initial channel %d not in %d..%d",
			ErrInvalidChannel, c.InitialChannel, c.MinChannel, c.MaxChannel)
	}
	if !c.StaticMode && c.SweepInterval <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidInterval, c.SweepInterval)
	}
	return nil
}

// ConfigFile is the YAML representation of Config. Absent fields take
// the defaults from DefaultConfig.
type ConfigFile struct {
	Capacity        *int   `yaml:"capacity"`
	SweepIntervalMs *int   `yaml:"sweep_interval_ms"`
	StaticMode      bool   `yaml:"static_mode"`
	InitialChannel  *uint8 `yaml:"initial_channel"`
	MinChannel      *uint8 `yaml:"min_channel"`
	MaxChannel      *uint8 `yaml:"max_channel"`
	IgnoreLocalMACs bool   `yaml:"ignore_local_macs"`
}

// ToConfig converts the file representation into a Config, applying
// defaults for absent fields.
func (f *ConfigFile) ToConfig() *Config {
	cfg := DefaultConfig()
	if f.Capacity != nil {
		cfg.Capacity = *f.Capacity
	}
	if f.SweepIntervalMs != nil {
		cfg.SweepInterval = time.Duration(*f.SweepIntervalMs) * time.Millisecond
	}
	cfg.StaticMode = f.StaticMode
	if f.InitialChannel != nil {
		cfg.InitialChannel = *f.InitialChannel
	}
	if f.MinChannel != nil {
		cfg.MinChannel = *f.MinChannel
	}
	if f.MaxChannel != nil {
		cfg.MaxChannel = *f.MaxChannel
	}
	cfg.IgnoreLocal = f.IgnoreLocalMACs
	return cfg
}

// LoadConfigFile reads and parses a YAML configuration file and
// validates the result.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- Path comes from the operator's own flag
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var file ConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg := file.ToConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
