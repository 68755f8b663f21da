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

package uart

import "fmt"

// RxMetaLength is the size of the capture head's RX metadata block that
// precedes every frame payload in a capture record.
const RxMetaLength = 12

// RxMeta is the decoded radio metadata the capture head attaches to
// each frame.
type RxMeta struct {
	// RSSI is the radio-reported signal level in dBm.
	RSSI int8
	// Rate is the PHY rate index.
	Rate uint8
	// SigMode distinguishes 11n (0) from legacy (1) frames.
	SigMode uint8
	// Channel is the channel the frame was received on.
	Channel uint8
}

// DecodeRxMeta decodes the 12-byte metadata block. Layout, bit offsets
// within the little-endian block:
//
//	byte 0:        RSSI, signed 8 bits
//	byte 1:        rate (low nibble), group bit, pad, sig_mode (top 2 bits)
//	bytes 2..3:    legacy length (12 bits) plus match flags
//	bytes 4..9:    11n modulation and length fields
//	byte 10:       channel (low nibble)
//	bytes 10..11:  pad
//
// This replaces the firmware's struct overlay with an explicit decode of
// the documented layout, which is portable across host architectures.
func DecodeRxMeta(b []byte) (RxMeta, error) {
	if len(b) < RxMetaLength {
		return RxMeta{}, fmt.Errorf("rx metadata truncated: want %d bytes, got %d", RxMetaLength, len(b))
	}
	return RxMeta{
		RSSI:    int8(b[0]),
		Rate:    b[1] & 0x0F,
		SigMode: (b[1] >> 6) & 0x03,
		Channel: b[10] & 0x0F,
	}, nil
}
