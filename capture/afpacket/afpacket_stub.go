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

//go:build !linux

// Package afpacket implements a Linux AF_PACKET capture source. On
// other platforms only this stub is compiled.
package afpacket

import (
	"context"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/capture"
)

// Source is unavailable on this platform.
type Source struct{}

// New always fails on non-Linux platforms.
func New(string) (*Source, error) {
	return nil, probemon.ErrCaptureNotSupported
}

// Start implements capture.Source.
func (*Source) Start(context.Context, capture.Handler) error {
	return probemon.ErrCaptureNotSupported
}

// Close implements capture.Source.
func (*Source) Close() error {
	return nil
}

// Type implements capture.Source.
func (*Source) Type() string {
	return "afpacket"
}
