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

// Package wire implements the framed record codec shared by the serial
// capture stream and the SPI side-channel sink.
//
// Record layout:
//
//	offset 0: magic 0xA5
//	offset 1: magic 0x5A
//	offset 2: record type
//	offset 3: body length, uint16 little-endian
//	offset 5: body
//	last:     XOR checksum over type, length and body bytes
//
// Readers resynchronize on the magic pair after corrupt records, so a
// damaged stream costs at most the records it damaged.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Record magic bytes.
const (
	Magic0 = 0xA5
	Magic1 = 0x5A
)

// Record types.
const (
	// RecordCapture carries RX metadata plus one raw frame payload from
	// a capture head to the host.
	RecordCapture byte = 0x01
	// RecordSighting carries one binary sighting event on the
	// side-channel.
	RecordSighting byte = 0x10
	// RecordSweep carries one binary sweep summary on the side-channel.
	RecordSweep byte = 0x11
)

// MaxBodyLength bounds record bodies; anything larger is treated as
// stream corruption.
const MaxBodyLength = 512

// headerLength covers magic, type and length fields.
const headerLength = 5

var (
	// ErrChecksumMismatch indicates a record failed its checksum; the
	// reader has already consumed it and the caller may simply continue.
	ErrChecksumMismatch = errors.New("record checksum mismatch")
	// ErrOversizedRecord indicates a length field beyond MaxBodyLength.
	ErrOversizedRecord = errors.New("record length exceeds maximum")
)

// Checksum computes the XOR checksum over the given byte slices.
func Checksum(parts ...[]byte) byte {
	var sum byte
	for _, part := range parts {
		for _, b := range part {
			sum ^= b
		}
	}
	return sum
}

// EncodeRecord frames a record body for the stream.
func EncodeRecord(typ byte, body []byte) []byte {
	buf := make([]byte, 0, headerLength+len(body)+1)
	buf = append(buf, Magic0, Magic1, typ)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(body)))
	buf = append(buf, body...)
	buf = append(buf, Checksum(buf[2:]))
	return buf
}

// Reader decodes framed records from a byte stream.
type Reader struct {
	br *bufio.Reader
}

// NewReader creates a record reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next returns the next well-formed record. It skips bytes until the
// magic pair is found, then decodes one record. A checksum mismatch or
// oversized length returns a sentinel error with the offending record
// already consumed, so callers can skip and continue.
func (r *Reader) Next() (typ byte, body []byte, err error) {
	if err := r.seekMagic(); err != nil {
		return 0, nil, fmt.Errorf("seek record magic: %w", err)
	}

	header := make([]byte, 3)
	if _, err := io.ReadFull(r.br, header); err != nil {
		return 0, nil, fmt.Errorf("read record header: %w", err)
	}
	typ = header[0]
	bodyLen := int(binary.LittleEndian.Uint16(header[1:3]))
	if bodyLen > MaxBodyLength {
		return 0, nil, ErrOversizedRecord
	}

	rest := make([]byte, bodyLen+1)
	if _, err := io.ReadFull(r.br, rest); err != nil {
		return 0, nil, fmt.Errorf("read record body: %w", err)
	}
	body = rest[:bodyLen]

	if Checksum(header, body) != rest[bodyLen] {
		return 0, nil, ErrChecksumMismatch
	}
	return typ, body, nil
}

// seekMagic consumes the stream up to and including the next magic pair.
func (r *Reader) seekMagic() error {
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return err //nolint:wrapcheck // callers wrap with operation context
		}
		if b != Magic0 {
			continue
		}
		next, err := r.br.ReadByte()
		if err != nil {
			return err //nolint:wrapcheck // callers wrap with operation context
		}
		if next == Magic1 {
			return nil
		}
		// A Magic0 directly before another Magic0 may still start a
		// record; push the byte back for re-inspection.
		if next == Magic0 {
			_ = r.br.UnreadByte()
		}
	}
}

// Sighting body layout: 6-byte MAC, signed RSSI, channel, count
// uint16 LE. Fixed 10 bytes.
const sightingBodyLength = 10

// EncodeSightingBody packs a sighting event for the side-channel.
func EncodeSightingBody(mac [6]byte, rssi int8, channel uint8, count uint16) []byte {
	body := make([]byte, 0, sightingBodyLength)
	body = append(body, mac[:]...)
	body = append(body, byte(rssi), channel)
	body = binary.LittleEndian.AppendUint16(body, count)
	return body
}

// DecodeSightingBody unpacks a sighting record body.
func DecodeSightingBody(body []byte) (mac [6]byte, rssi int8, channel uint8, count uint16, err error) {
	if len(body) != sightingBodyLength {
		return mac, 0, 0, 0, fmt.Errorf("sighting body: want %d bytes, got %d", sightingBodyLength, len(body))
	}
	copy(mac[:], body[:6])
	rssi = int8(body[6])
	channel = body[7]
	count = binary.LittleEndian.Uint16(body[8:10])
	return mac, rssi, channel, count, nil
}

// Sweep body layout: count uint16 LE. Fixed 2 bytes.
const sweepBodyLength = 2

// EncodeSweepBody packs a sweep summary for the side-channel.
func EncodeSweepBody(count uint16) []byte {
	return binary.LittleEndian.AppendUint16(make([]byte, 0, sweepBodyLength), count)
}

// DecodeSweepBody unpacks a sweep record body.
func DecodeSweepBody(body []byte) (uint16, error) {
	if len(body) != sweepBodyLength {
		return 0, fmt.Errorf("sweep body: want %d bytes, got %d", sweepBodyLength, len(body))
	}
	return binary.LittleEndian.Uint16(body), nil
}
