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
	"encoding/hex"
	"fmt"
	"strings"
)

// localBit marks a locally administered address in the first octet.
const localBit = 0x02

// MAC is a 6-byte hardware address. Two addresses are equal iff their
// canonical string forms are equal, which for a fixed-size array is the
// same as byte equality.
type MAC [6]byte

// MACFromBytes copies the first 6 bytes of b into a MAC. b must hold at
// least 6 bytes.
func MACFromBytes(b []byte) MAC {
	var m MAC
	copy(m[:], b[:6])
	return m
}

// ParseMAC parses a colon-separated hex address such as
// "aa:bb:cc:dd:ee:ff". Case is ignored.
func ParseMAC(s string) (MAC, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return MAC{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	var m MAC
	for i, part := range parts {
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return MAC{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		m[i] = b[0]
	}
	return m, nil
}

// String renders the canonical form: lowercase colon-separated hex,
// exactly 17 characters.
func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsLocallyAdministered returns true if the administration-scope bit of
// the first octet is set, indicating a software-assigned address. This
// classification only feeds the optional address filter; it never
// affects deduplication equality.
func (m MAC) IsLocallyAdministered() bool {
	return m[0]&localBit != 0
}
