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

// Package monitor composes the classifier, seen-buffer and channel
// scheduler into the probe-request control loop.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	probemon "github.com/ProbeMonProject/go-probemon"
	"github.com/ProbeMonProject/go-probemon/internal/syncutil"
)

// Session drives one monitoring run. It exclusively owns the seen-buffer
// and the channel state; capture sources call HandleFrame and the sweep
// ticker calls HandleTick.
//
// Frame delivery and ticks may come from different goroutines, so the
// whole check-then-act-then-possibly-reset region runs under a single
// mutex. Partial interleaving could otherwise report the same identity
// twice or let a sweep reset wipe the buffer mid-insert.
type Session struct {
	cfg        *probemon.Config
	seen       *probemon.SeenBuffer
	radio      probemon.Radio
	sink       probemon.Sink
	classifier probemon.Classifier
	channel    uint8
	mu         syncutil.Mutex
	closed     atomic.Bool
}

// NewSession creates a monitoring session. A nil config takes defaults;
// a nil radio is replaced by NopRadio. The sink must not be nil.
func NewSession(cfg *probemon.Config, radio probemon.Radio, sink probemon.Sink) (*Session, error) {
	if cfg == nil {
		cfg = probemon.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if radio == nil {
		radio = probemon.NopRadio{}
	}
	return &Session{
		cfg:        cfg,
		seen:       probemon.NewSeenBuffer(cfg.Capacity),
		radio:      radio,
		sink:       sink,
		classifier: probemon.Classifier{IgnoreLocal: cfg.IgnoreLocal},
		channel:    cfg.InitialChannel,
	}, nil
}

// HandleFrame processes one delivered capture. Frames that classify to
// a not-yet-seen identity produce a sighting event; everything else is
// dropped without a trace.
func (s *Session) HandleFrame(f probemon.Frame) {
	if s.closed.Load() {
		return
	}

	sighting, ok := s.classifier.Classify(f)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.seen.Contains(sighting.MAC) {
		s.mu.Unlock()
		return
	}
	outcome := s.seen.Insert(sighting.MAC)
	total := s.seen.Size()
	s.mu.Unlock()

	if outcome == probemon.EvictedInserted {
		probemon.Debugf("seen-buffer full, evicted oldest entry")
	}

	event := probemon.SightingEvent{
		MAC:            sighting.MAC.String(),
		SignalStrength: sighting.SignalStrength,
		Channel:        sighting.Channel,
		TotalCount:     total,
	}
	if err := s.sink.Sighting(event); err != nil {
		probemon.Debugf("sighting delivery failed: %v", err)
	}
}

// HandleTick advances the listening channel by one. On wraparound the
// tick is a sweep boundary: the sweep summary is emitted with the
// pre-reset count, the seen-buffer is reset, and only then is the new
// channel applied to the radio.
func (s *Session) HandleTick() {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	next := s.channel + 1
	wrapped := next > s.cfg.MaxChannel
	if wrapped {
		next = s.cfg.MinChannel
	}
	s.channel = next
	var total int
	if wrapped {
		total = s.seen.Reset()
	}
	s.mu.Unlock()

	if wrapped {
		if err := s.sink.SweepComplete(probemon.SweepEvent{TotalCount: total}); err != nil {
			probemon.Debugf("sweep summary delivery failed: %v", err)
		}
	}

	s.applyChannel(next)
}

// applyChannel retunes the radio. Failures belong to the radio driver
// and are only debug logged.
func (s *Session) applyChannel(channel uint8) {
	if err := s.radio.SetChannel(channel); err != nil {
		probemon.Debugf("set channel %d failed: %v", channel, err)
	} else {
		probemon.Debugf("channel: %d", channel)
	}
}

// Run applies the initial channel and drives the sweep ticker until the
// context is cancelled. In static mode no ticker is armed and the
// channel stays fixed for the whole run.
func (s *Session) Run(ctx context.Context) error {
	s.applyChannel(s.cfg.InitialChannel)

	if s.cfg.StaticMode {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.HandleTick()
		}
	}
}

// Channel returns the current listening channel.
func (s *Session) Channel() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// SeenCount returns the current seen-buffer size.
func (s *Session) SeenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.Size()
}

// SeenMACs returns a snapshot of the identities reported in the current
// sweep window, oldest first.
func (s *Session) SeenMACs() []probemon.MAC {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.MACs()
}

// Close stops frame and tick processing. The sink and radio are owned
// by the caller and stay open.
func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}
