// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package capture persists received CAN frames as a stream of CBOR
// records and plays captures back through the transport interface.
package capture

import (
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/automotive-go/canreader/pkg/can"
)

// Record is one captured frame. Field keys are kept short, capture
// files grow at bus rate.
type Record struct {
	Time    int64  `cbor:"t"` // receipt time, unix nanoseconds
	ID      uint32 `cbor:"i"`
	Kind    int    `cbor:"k"`
	Data    []byte `cbor:"d"`
	Channel string `cbor:"c,omitempty"`
	Name    string `cbor:"n,omitempty"`
}

func newRecord(frame can.Frame) Record {
	return Record{
		Time:    frame.Timestamp.UnixNano(),
		ID:      frame.ID,
		Kind:    int(frame.Kind),
		Data:    frame.Data,
		Channel: frame.Channel,
		Name:    frame.Name,
	}
}

// Frame rebuilds the received frame from the record.
func (rec Record) Frame() can.Frame {
	frame := can.Frame{
		ID:        rec.ID,
		Data:      rec.Data,
		Kind:      can.FrameKind(rec.Kind),
		Name:      rec.Name,
		DLC:       uint8(len(rec.Data)),
		Direction: can.DirectionRx,
		Channel:   rec.Channel,
	}
	if rec.Time != 0 {
		frame.Timestamp = time.Unix(0, rec.Time)
	}
	if frame.Name == "" {
		frame.Name = can.DefaultName(frame.ID)
	}
	return frame
}

// Writer appends frames to a capture stream. Safe for concurrent use;
// in particular Write is usable directly as a monitor callback.
type Writer struct {
	mu    sync.Mutex
	enc   *cbor.Encoder
	count int
	err   error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: cbor.NewEncoder(w)}
}

// Write appends one frame to the capture. The first encode error
// sticks; later writes are dropped.
func (w *Writer) Write(frame can.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if err := w.enc.Encode(newRecord(frame)); err != nil {
		w.err = err
		return err
	}
	w.count += 1
	return nil
}

// Count returns the number of frames written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Err returns the sticking encode error, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// ReadAll decodes a whole capture stream.
func ReadAll(r io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(r)
	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return records, nil
			}
			return records, err
		}
		records = append(records, rec)
	}
}
