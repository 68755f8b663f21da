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

// Package capture defines the capture-source collaborator interface and
// the radio-metadata decoding shared by its implementations.
package capture

import (
	"context"

	probemon "github.com/ProbeMonProject/go-probemon"
)

// Handler receives one captured frame per invocation. The frame payload
// is only valid for the duration of the call.
type Handler func(probemon.Frame)

// Source delivers captured link-layer frames to a handler. A source is
// consumed, not owned, by the monitoring core.
type Source interface {
	// Start blocks, delivering frames to handler until the context is
	// cancelled or a fatal transport error occurs.
	Start(ctx context.Context, handler Handler) error

	// Close releases the underlying capture device.
	Close() error

	// Type identifies the source kind, e.g. "uart" or "afpacket".
	Type() string
}
