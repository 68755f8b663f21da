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

package capture

import (
	"encoding/binary"
	"fmt"
)

// Radiotap present-flag bit indices for the fields this decoder walks.
const (
	rtTSFT = iota
	rtFlags
	rtRate
	rtChannel
	rtFHSS
	rtDBMAntennaSignal
)

// rtExtBit chains additional present words.
const rtExtBit = 31

// radiotapField describes the size and alignment of one radiotap field.
type radiotapField struct {
	size  int
	align int
}

// Field layout up to dBm antenna signal; later fields are never needed.
var radiotapFields = []radiotapField{
	rtTSFT:             {size: 8, align: 8},
	rtFlags:            {size: 1, align: 1},
	rtRate:             {size: 1, align: 1},
	rtChannel:          {size: 4, align: 2},
	rtFHSS:             {size: 2, align: 2},
	rtDBMAntennaSignal: {size: 1, align: 1},
}

// RadiotapInfo is the decoded subset of a radiotap header that the
// monitor cares about: where the 802.11 frame starts, and the signal
// and channel metadata when present.
type RadiotapInfo struct {
	HeaderLength int
	FrequencyMHz uint16
	SignalDBm    int8
	HasSignal    bool
	HasFrequency bool
}

// DecodeRadiotap decodes the fixed radiotap preamble and walks the
// present-flag fields far enough to extract dBm antenna signal and
// channel frequency. The raw 802.11 frame follows at HeaderLength.
//
// Header layout: u8 version (must be 0), u8 pad, u16le header length,
// then one or more u32le present words (bit 31 chains), then the field
// data with per-field natural alignment.
func DecodeRadiotap(b []byte) (RadiotapInfo, error) {
	if len(b) < 8 {
		return RadiotapInfo{}, fmt.Errorf("radiotap header truncated: %d bytes", len(b))
	}
	if b[0] != 0 {
		return RadiotapInfo{}, fmt.Errorf("unsupported radiotap version %d", b[0])
	}

	info := RadiotapInfo{HeaderLength: int(binary.LittleEndian.Uint16(b[2:4]))}
	if info.HeaderLength > len(b) {
		return RadiotapInfo{}, fmt.Errorf("radiotap length %d exceeds capture %d", info.HeaderLength, len(b))
	}

	// Collect the present words; fields begin after the last one.
	present := binary.LittleEndian.Uint32(b[4:8])
	off := 8
	for words, next := 1, present; next&(1<<rtExtBit) != 0; words++ {
		if words > 8 || off+4 > info.HeaderLength {
			return RadiotapInfo{}, fmt.Errorf("radiotap present chain overruns header")
		}
		next = binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
	}

	// Only the first word's standard fields are walked; everything the
	// monitor needs sits at index 5 or below.
	for bit, field := range radiotapFields {
		if present&(1<<bit) == 0 {
			continue
		}
		if pad := off % field.align; pad != 0 {
			off += field.align - pad
		}
		if off+field.size > info.HeaderLength {
			return info, nil
		}
		switch bit {
		case rtChannel:
			info.FrequencyMHz = binary.LittleEndian.Uint16(b[off : off+2])
			info.HasFrequency = true
		case rtDBMAntennaSignal:
			info.SignalDBm = int8(b[off])
			info.HasSignal = true
		}
		off += field.size
	}

	return info, nil
}

// FrequencyToChannel maps a center frequency in MHz to its channel
// number. Unknown frequencies map to 0.
func FrequencyToChannel(freqMHz uint16) uint8 {
	switch {
	case freqMHz == 2484:
		return 14
	case freqMHz >= 2412 && freqMHz <= 2472:
		return uint8((freqMHz-2412)/5 + 1)
	case freqMHz >= 5000 && freqMHz <= 5900:
		return uint8((freqMHz - 5000) / 5)
	default:
		return 0
	}
}
