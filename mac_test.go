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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMAC(t *testing.T) {
	t.Parallel()

	t.Run("valid lowercase", func(t *testing.T) {
		t.Parallel()
		mac, err := ParseMAC("aa:bb:cc:dd:ee:ff")
		require.NoError(t, err)
		assert.Equal(t, MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, mac)
	})

	t.Run("valid uppercase", func(t *testing.T) {
		t.Parallel()
		mac, err := ParseMAC("AA:BB:CC:DD:EE:FF")
		require.NoError(t, err)
		assert.Equal(t, MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, mac)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{
			"",
			"aa:bb:cc:dd:ee",
			"aa:bb:cc:dd:ee:ff:00",
			"aa-bb-cc-dd-ee-ff",
			"gg:bb:cc:dd:ee:ff",
			"aaa:bb:cc:dd:ee:ff",
		} {
			_, err := ParseMAC(s)
			assert.ErrorIs(t, err, ErrInvalidAddress, "input %q", s)
		}
	})
}

func TestMACString(t *testing.T) {
	t.Parallel()

	mac := MAC{0x02, 0xAB, 0x00, 0x01, 0x02, 0xFF}
	assert.Equal(t, "02:ab:00:01:02:ff", mac.String())
	assert.Len(t, mac.String(), 17)
}

func TestMACRoundTrip(t *testing.T) {
	t.Parallel()

	mac := MAC{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}
	parsed, err := ParseMAC(mac.String())
	require.NoError(t, err)
	assert.Equal(t, mac, parsed)
}

func TestMACFromBytes(t *testing.T) {
	t.Parallel()

	b := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	assert.Equal(t, MAC{1, 2, 3, 4, 5, 6}, MACFromBytes(b))
}

func TestMACIsLocallyAdministered(t *testing.T) {
	t.Parallel()

	assert.True(t, MAC{0x02}.IsLocallyAdministered())
	assert.True(t, MAC{0x06}.IsLocallyAdministered())
	assert.False(t, MAC{0x00}.IsLocallyAdministered())
	assert.False(t, MAC{0x01}.IsLocallyAdministered(), "multicast bit alone is not local")
}
