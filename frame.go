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

// Package probemon implements passive 802.11 probe-request monitoring:
// classifying captured management frames, deduplicating transmitter
// identities within a channel sweep, and producing sighting events for
// line-oriented or binary reporting sinks.
package probemon

// 802.11 frame control field values of interest
const (
	// FrameTypeManagement is the 802.11 management frame type.
	FrameTypeManagement = 0x00
	// FrameTypeControl is the 802.11 control frame type.
	FrameTypeControl = 0x01
	// FrameTypeData is the 802.11 data frame type.
	FrameTypeData = 0x02

	// SubtypeProbeRequest is the management subtype broadcast by stations
	// searching for networks.
	SubtypeProbeRequest = 0x04
)

// PayloadLength is the fixed 802.11 frame body length delivered by the
// capture head. Trailing bytes past the actual frame are undefined and
// must not be interpreted.
const PayloadLength = 112

// addressOffset is the byte offset of the transmitter address within a
// management frame body.
const addressOffset = 10

// minClassifiableLength is the minimum payload holding both the frame
// control field and a full transmitter address.
const minClassifiableLength = addressOffset + 6

// Frame is one captured link-layer frame with its radio-reported
// metadata. The payload is only valid for the duration of the delivery
// callback; Classify copies everything it keeps.
type Frame struct {
	Payload        []byte
	SignalStrength int
	Channel        uint8
}

// FrameControl holds the decoded 802.11 frame control field.
type FrameControl struct {
	Version uint8
	Type    uint8
	Subtype uint8
	ToDS    bool
	FromDS  bool
}

// DecodeFrameControl decodes the 16-bit frame control field from its two
// wire bytes (b0 is the low byte).
func DecodeFrameControl(b0, b1 byte) FrameControl {
	fc := uint16(b0) | uint16(b1)<<8
	return FrameControl{
		Version: uint8(fc & 0x0003),
		Type:    uint8((fc & 0x000C) >> 2),
		Subtype: uint8((fc & 0x00F0) >> 4),
		ToDS:    fc&0x0100 != 0,
		FromDS:  fc&0x0200 != 0,
	}
}

// IsProbeRequest returns true if the frame control identifies a
// management probe-request frame.
func (fc FrameControl) IsProbeRequest() bool {
	return fc.Type == FrameTypeManagement && fc.Subtype == SubtypeProbeRequest
}

// Sighting is one detection of a transmitting station: its hardware
// identity plus the radio metadata of the frame it was seen in.
type Sighting struct {
	MAC            MAC
	SignalStrength int
	Channel        uint8
}

// Classifier inspects raw captured frames and extracts sightings from
// probe requests. It is a pure transform: it holds no mutable state and
// never touches the seen-buffer or any sink.
type Classifier struct {
	// IgnoreLocal drops sightings whose address is locally administered
	// (the usual mark of randomized MACs).
	IgnoreLocal bool
}

// Classify inspects one captured frame. It returns the extracted
// sighting and true for probe requests that pass the address filter,
// and a zero Sighting and false for every other frame. Truncated or
// malformed payloads are indistinguishable from frames not of interest.
func (c Classifier) Classify(f Frame) (Sighting, bool) {
	if len(f.Payload) < minClassifiableLength {
		return Sighting{}, false
	}

	fc := DecodeFrameControl(f.Payload[0], f.Payload[1])
	if !fc.IsProbeRequest() {
		return Sighting{}, false
	}

	mac := MACFromBytes(f.Payload[addressOffset:])
	if c.IgnoreLocal && mac.IsLocallyAdministered() {
		return Sighting{}, false
	}

	return Sighting{
		MAC:            mac,
		SignalStrength: f.SignalStrength,
		Channel:        f.Channel,
	}, true
}
