// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"io"
	"sync"
	"time"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
	"github.com/automotive-go/canreader/pkg/transport"
)

// Replay plays a capture back through the Transport interface: each
// Receive returns the next record, and an exhausted capture behaves
// like a quiet bus (receive timeouts). Sent frames are collected but
// go nowhere.
type Replay struct {
	mu        sync.Mutex
	records   []Record
	next      int
	connected bool
	filters   []can.FilterRule
	sent      []can.Frame
}

// NewReplay decodes a capture stream into a replay transport.
func NewReplay(r io.Reader) (*Replay, error) {
	records, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Replay{records: records}, nil
}

func (p *Replay) Connect(cfg transport.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

func (p *Replay) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

func (p *Replay) Send(frame can.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return errors.ErrNotConnected
	}
	p.sent = append(p.sent, frame)
	return nil
}

func (p *Replay) Receive(timeout time.Duration) (can.Frame, error) {
	p.mu.Lock()
	for p.next < len(p.records) {
		frame := p.records[p.next].Frame()
		p.next += 1
		if !can.MatchAny(p.filters, frame) {
			continue
		}
		p.mu.Unlock()
		frame.Timestamp = time.Now()
		return frame, nil
	}
	p.mu.Unlock()
	time.Sleep(timeout)
	return can.Frame{}, errors.ErrReceiveTimeout
}

func (p *Replay) SetFilters(rules []can.FilterRule) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = make([]can.FilterRule, len(rules))
	copy(p.filters, rules)
	return nil
}

// Sent returns the frames handed to Send.
func (p *Replay) Sent() []can.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	sent := make([]can.Frame, len(p.sent))
	copy(sent, p.sent)
	return sent
}

// Remaining returns the number of records not yet replayed.
func (p *Replay) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records) - p.next
}
