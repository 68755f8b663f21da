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

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceInfoString(t *testing.T) {
	t.Parallel()

	withVID := DeviceInfo{Path: "/dev/ttyUSB0", VIDPID: "10C4:EA60"}
	assert.Equal(t, "/dev/ttyUSB0 (10C4:EA60)", withVID.String())

	builtin := DeviceInfo{Path: "/dev/ttyS0"}
	assert.Equal(t, "/dev/ttyS0", builtin.String())
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"1234:5678", "ABCD:EF01"}
	assert.True(t, isBlocked("1234:5678", blocklist))
	assert.True(t, isBlocked("abcd:ef01", blocklist), "comparison is case-insensitive")
	assert.False(t, isBlocked("10C4:EA60", blocklist))
	assert.False(t, isBlocked("10C4:EA60", nil))
}

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	ignore := []string{"/dev/ttyS0", "COM3"}
	assert.True(t, isPathIgnored("/dev/ttyS0", ignore))
	assert.True(t, isPathIgnored("com3", ignore), "comparison is case-insensitive")
	assert.False(t, isPathIgnored("/dev/ttyUSB0", ignore))
	assert.False(t, isPathIgnored("/dev/ttyUSB0", nil))
}

func TestFilterAndRank(t *testing.T) {
	t.Parallel()

	ports := []DeviceInfo{
		{Path: "/dev/ttyS0"},
		{Path: "/dev/ttyUSB0", VIDPID: "1234:5678"},
		{Path: "/dev/ttyUSB1", VIDPID: "10C4:EA60"},
		{Path: "/dev/ttyUSB2", VIDPID: "1A86:7523"},
	}

	t.Run("known bridges sort first", func(t *testing.T) {
		t.Parallel()

		devices := filterAndRank(ports, &Options{})
		require.Len(t, devices, 4)
		assert.Equal(t, "/dev/ttyUSB1", devices[0].Path)
		assert.Equal(t, "/dev/ttyUSB2", devices[1].Path)
	})

	t.Run("blocklist drops matching ports", func(t *testing.T) {
		t.Parallel()

		devices := filterAndRank(ports, &Options{Blocklist: []string{"1234:5678"}})
		require.Len(t, devices, 3)
		for _, d := range devices {
			assert.NotEqual(t, "1234:5678", d.VIDPID)
		}
	})

	t.Run("ignore paths drop matching ports", func(t *testing.T) {
		t.Parallel()

		devices := filterAndRank(ports, &Options{IgnorePaths: []string{"/dev/ttyUSB1", "/dev/ttyS0"}})
		require.Len(t, devices, 2)
		assert.Equal(t, "/dev/ttyUSB2", devices[0].Path)
		assert.Equal(t, "/dev/ttyUSB0", devices[1].Path)
	})

	t.Run("everything filtered", func(t *testing.T) {
		t.Parallel()

		devices := filterAndRank(ports[:1], &Options{IgnorePaths: []string{"/dev/ttyS0"}})
		assert.Empty(t, devices)
	})
}
