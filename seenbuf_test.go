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
)

func mac(last byte) MAC {
	return MAC{0xAA, 0xBB, 0xCC, 0x00, 0x00, last}
}

func TestSeenBufferInsertAndContains(t *testing.T) {
	t.Parallel()

	buf := NewSeenBuffer(3)
	assert.Equal(t, 0, buf.Size())
	assert.False(t, buf.Contains(mac(1)))

	assert.Equal(t, Inserted, buf.Insert(mac(1)))
	assert.True(t, buf.Contains(mac(1)))
	assert.False(t, buf.Contains(mac(2)))
	assert.Equal(t, 1, buf.Size())
}

func TestSeenBufferEviction(t *testing.T) {
	t.Parallel()

	buf := NewSeenBuffer(2)
	assert.Equal(t, Inserted, buf.Insert(mac(1)))
	assert.Equal(t, Inserted, buf.Insert(mac(2)))

	// Third insert evicts the oldest entry.
	assert.Equal(t, EvictedInserted, buf.Insert(mac(3)))
	assert.Equal(t, 2, buf.Size())
	assert.False(t, buf.Contains(mac(1)))
	assert.True(t, buf.Contains(mac(2)))
	assert.True(t, buf.Contains(mac(3)))
	assert.Equal(t, []MAC{mac(2), mac(3)}, buf.MACs())
}

func TestSeenBufferEvictionOrder(t *testing.T) {
	t.Parallel()

	buf := NewSeenBuffer(3)
	for i := byte(1); i <= 6; i++ {
		buf.Insert(mac(i))
	}
	// Only the three newest remain, oldest first.
	assert.Equal(t, []MAC{mac(4), mac(5), mac(6)}, buf.MACs())
}

func TestSeenBufferReset(t *testing.T) {
	t.Parallel()

	buf := NewSeenBuffer(4)
	buf.Insert(mac(1))
	buf.Insert(mac(2))
	buf.Insert(mac(3))

	assert.Equal(t, 3, buf.Reset())
	assert.Equal(t, 0, buf.Size())
	assert.False(t, buf.Contains(mac(1)))

	// A fresh window accepts previously seen identities again.
	assert.Equal(t, Inserted, buf.Insert(mac(1)))
	assert.Equal(t, 1, buf.Reset())
	assert.Equal(t, 0, buf.Reset(), "reset of empty buffer reports zero")
}

func TestSeenBufferCapacityClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewSeenBuffer(0).Capacity())
	assert.Equal(t, 1, NewSeenBuffer(-5).Capacity())
	assert.Equal(t, 7, NewSeenBuffer(7).Capacity())
}

func TestSeenBufferCapacityOne(t *testing.T) {
	t.Parallel()

	buf := NewSeenBuffer(1)
	assert.Equal(t, Inserted, buf.Insert(mac(1)))
	assert.Equal(t, EvictedInserted, buf.Insert(mac(2)))
	assert.Equal(t, 1, buf.Size())
	assert.True(t, buf.Contains(mac(2)))
	assert.False(t, buf.Contains(mac(1)))
}

func TestSeenBufferMACsSnapshot(t *testing.T) {
	t.Parallel()

	buf := NewSeenBuffer(2)
	buf.Insert(mac(1))

	snapshot := buf.MACs()
	buf.Insert(mac(2))
	assert.Equal(t, []MAC{mac(1)}, snapshot, "snapshot must not alias the buffer")
}
