// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"sync"
	"time"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
)

// StubTransport is an in-memory Transport for tests. Receive pops from
// Stack (primed with Push); sent frames and filter updates are kept in
// Trace/FilterSets for later assertions.
type StubTransport struct {
	mu sync.Mutex

	Config     Config
	Connected  bool
	Connects   int
	FilterSets [][]can.FilterRule
	Trace      []can.Frame // sent frames, in order
	Stack      []can.Frame // primed receive frames

	// ApplyFilters makes Receive honour the last pushed filter set.
	ApplyFilters bool

	// Error injection.
	ConnectErr error
	SendErr    error
	ReceiveErr error
	FilterErr  error
}

func (s *StubTransport) Connect(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Connects += 1
	if s.ConnectErr != nil {
		return s.ConnectErr
	}
	s.Config = cfg
	s.Connected = true
	return nil
}

func (s *StubTransport) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Connected = false
	return nil
}

func (s *StubTransport) Send(frame can.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	if !s.Connected {
		return errors.ErrNotConnected
	}
	// Deep copy the payload, callers may reuse the slice.
	data := make([]byte, len(frame.Data))
	copy(data, frame.Data)
	frame.Data = data
	s.Trace = append(s.Trace, frame)
	return nil
}

func (s *StubTransport) Receive(timeout time.Duration) (can.Frame, error) {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		if s.ReceiveErr != nil {
			err := s.ReceiveErr
			s.mu.Unlock()
			return can.Frame{}, err
		}
		if !s.Connected {
			s.mu.Unlock()
			return can.Frame{}, errors.ErrNotConnected
		}
		frame, ok := s.pop()
		s.mu.Unlock()
		if ok {
			frame.Timestamp = time.Now()
			return frame, nil
		}
		remain := time.Until(deadline)
		if remain <= 0 {
			return can.Frame{}, errors.ErrReceiveTimeout
		}
		if remain > 10*time.Millisecond {
			remain = 10 * time.Millisecond
		}
		time.Sleep(remain)
	}
}

// pop returns the next stacked frame passing the filter set. Held
// under s.mu.
func (s *StubTransport) pop() (can.Frame, bool) {
	for len(s.Stack) > 0 {
		frame := s.Stack[0]
		s.Stack = s.Stack[1:]
		if s.ApplyFilters && len(s.FilterSets) > 0 {
			if !can.MatchAny(s.FilterSets[len(s.FilterSets)-1], frame) {
				continue
			}
		}
		return frame, true
	}
	return can.Frame{}, false
}

func (s *StubTransport) SetFilters(rules []can.FilterRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FilterErr != nil {
		return s.FilterErr
	}
	set := make([]can.FilterRule, len(rules))
	copy(set, rules)
	s.FilterSets = append(s.FilterSets, set)
	return nil
}

// SetReceiveErr flips receive error injection while loops are already
// polling.
func (s *StubTransport) SetReceiveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReceiveErr = err
}

// Push primes a frame onto the receive stack.
func (s *StubTransport) Push(frame can.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]byte, len(frame.Data))
	copy(data, frame.Data)
	frame.Data = data
	s.Stack = append(s.Stack, frame)
}

// Sent returns a copy of the sent-frame trace.
func (s *StubTransport) Sent() []can.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	trace := make([]can.Frame, len(s.Trace))
	copy(trace, s.Trace)
	return trace
}

// Reset clears stack, trace and filter history.
func (s *StubTransport) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stack = nil
	s.Trace = nil
	s.FilterSets = nil
}
