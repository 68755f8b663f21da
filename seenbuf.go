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

// InsertOutcome reports which branch an insertion took, for
// observability.
type InsertOutcome int

const (
	// Inserted means the identity was appended with room to spare.
	Inserted InsertOutcome = iota
	// EvictedInserted means the oldest entry was evicted to make room.
	EvictedInserted
)

// SeenBuffer is a bounded FIFO of hardware identities already reported
// in the current sweep window. It is not safe for concurrent use; the
// owning control loop serializes access (see monitor.Session).
//
// Eviction is oldest-first. The buffer has no reuse-value concept: its
// only job is first-sight deduplication within one window, so FIFO is
// the simplest policy that bounds memory deterministically.
type SeenBuffer struct {
	entries  []MAC
	capacity int
}

// NewSeenBuffer creates an empty buffer holding at most capacity
// identities. A capacity below 1 is clamped to 1; callers should have
// rejected that at configuration time already (Config.Validate).
func NewSeenBuffer(capacity int) *SeenBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &SeenBuffer{
		entries:  make([]MAC, 0, capacity),
		capacity: capacity,
	}
}

// Contains scans exactly the occupied entries for an identity match.
func (b *SeenBuffer) Contains(mac MAC) bool {
	for _, m := range b.entries {
		if m == mac {
			return true
		}
	}
	return false
}

// Insert appends a novel identity, evicting the oldest entry first when
// the buffer is full. The caller must have checked Contains; duplicate
// insertion is a caller error and is not absorbed here.
func (b *SeenBuffer) Insert(mac MAC) InsertOutcome {
	if len(b.entries) >= b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries[len(b.entries)-1] = mac
		return EvictedInserted
	}
	b.entries = append(b.entries, mac)
	return Inserted
}

// Reset clears all entries and returns the count that was held.
func (b *SeenBuffer) Reset() int {
	n := len(b.entries)
	b.entries = b.entries[:0]
	return n
}

// Size returns the current entry count, 0..capacity.
func (b *SeenBuffer) Size() int {
	return len(b.entries)
}

// Capacity returns the configured bound.
func (b *SeenBuffer) Capacity() int {
	return b.capacity
}

// MACs returns a snapshot of the current entries in insertion order.
func (b *SeenBuffer) MACs() []MAC {
	out := make([]MAC, len(b.entries))
	copy(out, b.entries)
	return out
}
