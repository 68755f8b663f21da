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

package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecordLayout(t *testing.T) {
	t.Parallel()

	record := EncodeRecord(RecordCapture, []byte{0x10, 0x20})

	require.Len(t, record, 8)
	assert.Equal(t, byte(Magic0), record[0])
	assert.Equal(t, byte(Magic1), record[1])
	assert.Equal(t, RecordCapture, record[2])
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(record[3:5]))
	assert.Equal(t, []byte{0x10, 0x20}, record[5:7])
	assert.Equal(t, Checksum(record[2:7]), record[7])
}

func TestReaderRoundTrip(t *testing.T) {
	t.Parallel()

	var stream bytes.Buffer
	stream.Write(EncodeRecord(RecordCapture, []byte{1, 2, 3}))
	stream.Write(EncodeRecord(RecordSighting, []byte{4, 5}))

	reader := NewReader(&stream)

	typ, body, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordCapture, typ)
	assert.Equal(t, []byte{1, 2, 3}, body)

	typ, body, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordSighting, typ)
	assert.Equal(t, []byte{4, 5}, body)

	_, _, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderEmptyBody(t *testing.T) {
	t.Parallel()

	reader := NewReader(bytes.NewReader(EncodeRecord(RecordSweep, nil)))
	typ, body, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordSweep, typ)
	assert.Empty(t, body)
}

func TestReaderResyncsAfterGarbage(t *testing.T) {
	t.Parallel()

	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0xFF, Magic0, 0x13, 0x37}) // line noise, including a lone magic byte
	stream.Write(EncodeRecord(RecordCapture, []byte{9}))

	reader := NewReader(&stream)
	typ, body, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordCapture, typ)
	assert.Equal(t, []byte{9}, body)
}

func TestReaderDoubledMagicByte(t *testing.T) {
	t.Parallel()

	// A stray Magic0 directly before a real record must not eat the
	// record's own magic pair.
	var stream bytes.Buffer
	stream.WriteByte(Magic0)
	stream.Write(EncodeRecord(RecordCapture, []byte{7}))

	reader := NewReader(&stream)
	typ, body, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordCapture, typ)
	assert.Equal(t, []byte{7}, body)
}

func TestReaderChecksumMismatch(t *testing.T) {
	t.Parallel()

	damaged := EncodeRecord(RecordCapture, []byte{1, 2, 3})
	damaged[6] ^= 0xFF

	var stream bytes.Buffer
	stream.Write(damaged)
	stream.Write(EncodeRecord(RecordCapture, []byte{4}))

	reader := NewReader(&stream)
	_, _, err := reader.Next()
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	// The damaged record is consumed; the next one decodes cleanly.
	typ, body, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordCapture, typ)
	assert.Equal(t, []byte{4}, body)
}

func TestReaderOversizedRecord(t *testing.T) {
	t.Parallel()

	var stream bytes.Buffer
	stream.Write([]byte{Magic0, Magic1, RecordCapture})
	var lengthField [2]byte
	binary.LittleEndian.PutUint16(lengthField[:], MaxBodyLength+1)
	stream.Write(lengthField[:])

	reader := NewReader(&stream)
	_, _, err := reader.Next()
	assert.ErrorIs(t, err, ErrOversizedRecord)
}

func TestReaderTruncatedStream(t *testing.T) {
	t.Parallel()

	record := EncodeRecord(RecordCapture, []byte{1, 2, 3})
	reader := NewReader(bytes.NewReader(record[:len(record)-2]))

	_, _, err := reader.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSightingBodyCodec(t *testing.T) {
	t.Parallel()

	macIn := [6]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}
	body := EncodeSightingBody(macIn, -67, 11, 42)
	require.Len(t, body, 10)

	mac, rssi, channel, count, err := DecodeSightingBody(body)
	require.NoError(t, err)
	assert.Equal(t, macIn, mac)
	assert.Equal(t, int8(-67), rssi)
	assert.Equal(t, uint8(11), channel)
	assert.Equal(t, uint16(42), count)
}

func TestDecodeSightingBodyWrongLength(t *testing.T) {
	t.Parallel()

	_, _, _, _, err := DecodeSightingBody(make([]byte, 9))
	assert.Error(t, err)
}

func TestSweepBodyCodec(t *testing.T) {
	t.Parallel()

	count, err := DecodeSweepBody(EncodeSweepBody(300))
	require.NoError(t, err)
	assert.Equal(t, uint16(300), count)

	_, err = DecodeSweepBody([]byte{1})
	assert.Error(t, err)
}
