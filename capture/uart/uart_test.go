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

import (
	"bytes"
	"context"
	"sync"
	"testing"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRxMeta(t *testing.T) {
	t.Parallel()

	t.Run("decodes fields", func(t *testing.T) {
		t.Parallel()

		b := make([]byte, RxMetaLength)
		b[0] = 0xC9        // RSSI -55
		b[1] = 0x40 | 0x0B // sig_mode 1, rate 11
		b[10] = 0x06       // channel 6

		meta, err := DecodeRxMeta(b)
		require.NoError(t, err)
		assert.Equal(t, int8(-55), meta.RSSI)
		assert.Equal(t, uint8(11), meta.Rate)
		assert.Equal(t, uint8(1), meta.SigMode)
		assert.Equal(t, uint8(6), meta.Channel)
	})

	t.Run("rejects short input", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeRxMeta(make([]byte, RxMetaLength-1))
		assert.Error(t, err)
	})
}

// captureRecord builds one wire record carrying RX metadata and a
// probe-request payload from the given transmitter address.
func captureRecord(mac probemon.MAC, rssi int8, channel uint8) []byte {
	body := make([]byte, RxMetaLength+probemon.PayloadLength)
	body[0] = byte(rssi)
	body[10] = channel & 0x0F

	payload := body[RxMetaLength:]
	payload[0] = probemon.SubtypeProbeRequest << 4
	copy(payload[10:], mac[:])

	return wire.EncodeRecord(wire.RecordCapture, body)
}

// collect copies the delivered frames; the source reuses its buffers
// between deliveries.
type collect struct {
	frames []probemon.Frame
}

func (c *collect) handler(f probemon.Frame) {
	payload := make([]byte, len(f.Payload))
	copy(payload, f.Payload)
	f.Payload = payload
	c.frames = append(c.frames, f)
}

func TestSourceStart(t *testing.T) {
	t.Parallel()

	mac1 := probemon.MAC{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01}
	mac2 := probemon.MAC{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x02}

	t.Run("delivers frames until stream end", func(t *testing.T) {
		t.Parallel()

		var stream bytes.Buffer
		stream.Write(captureRecord(mac1, -40, 1))
		stream.Write(captureRecord(mac2, -55, 6))

		source := NewFromReader(&stream, "test")
		var c collect
		err := source.Start(context.Background(), c.handler)

		// Stream end is a permanent transport failure.
		var te *probemon.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, probemon.ErrorTypePermanent, te.Type)

		require.Len(t, c.frames, 2)
		assert.Equal(t, -40, c.frames[0].SignalStrength)
		assert.Equal(t, uint8(1), c.frames[0].Channel)
		assert.Equal(t, -55, c.frames[1].SignalStrength)
		assert.Equal(t, uint8(6), c.frames[1].Channel)

		sighting, ok := probemon.Classifier{}.Classify(c.frames[1])
		require.True(t, ok)
		assert.Equal(t, mac2, sighting.MAC)
	})

	t.Run("skips corrupt records", func(t *testing.T) {
		t.Parallel()

		damaged := captureRecord(mac1, -40, 1)
		damaged[len(damaged)-1] ^= 0xFF

		var stream bytes.Buffer
		stream.Write(damaged)
		stream.Write(captureRecord(mac2, -50, 3))

		source := NewFromReader(&stream, "test")
		var c collect
		_ = source.Start(context.Background(), c.handler)

		require.Len(t, c.frames, 1)
		sighting, ok := probemon.Classifier{}.Classify(c.frames[0])
		require.True(t, ok)
		assert.Equal(t, mac2, sighting.MAC)
	})

	t.Run("ignores non-capture records", func(t *testing.T) {
		t.Parallel()

		var stream bytes.Buffer
		stream.Write(wire.EncodeRecord(wire.RecordSweep, wire.EncodeSweepBody(3)))
		stream.Write(captureRecord(mac1, -40, 1))

		source := NewFromReader(&stream, "test")
		var c collect
		_ = source.Start(context.Background(), c.handler)

		assert.Len(t, c.frames, 1)
	})

	t.Run("drops short capture bodies", func(t *testing.T) {
		t.Parallel()

		var stream bytes.Buffer
		stream.Write(wire.EncodeRecord(wire.RecordCapture, make([]byte, RxMetaLength+10)))
		stream.Write(captureRecord(mac1, -40, 1))

		source := NewFromReader(&stream, "test")
		var c collect
		_ = source.Start(context.Background(), c.handler)

		assert.Len(t, c.frames, 1)
	})

	t.Run("rejects concurrent start", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &blockingReader{ctx: ctx, reading: make(chan struct{})}
		source := NewFromReader(reader, "test")
		go func() {
			_ = source.Start(ctx, func(probemon.Frame) {})
		}()

		// The first Start owns the source once it reaches its first read.
		<-reader.reading
		err := source.Start(ctx, func(probemon.Frame) {})
		assert.ErrorIs(t, err, probemon.ErrSourceRunning)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		source := NewFromReader(&bytes.Buffer{}, "test")
		err := source.Start(ctx, func(probemon.Frame) {})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// blockingReader signals its first Read, then blocks until the context
// is cancelled.
type blockingReader struct {
	ctx     context.Context
	reading chan struct{}
	once    sync.Once
}

func (r *blockingReader) Read([]byte) (int, error) {
	r.once.Do(func() { close(r.reading) })
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}
