// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
	"github.com/automotive-go/canreader/pkg/transport"
)

func captureFrames(t *testing.T, frames ...can.Frame) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	for _, f := range frames {
		require.Nil(t, w.Write(f))
	}
	require.Equal(t, len(frames), w.Count())
	return buf
}

func TestCaptureRoundTrip(t *testing.T) {
	ts := time.Now()
	buf := captureFrames(t,
		can.Frame{ID: 0x100, Name: "rpm", Data: []byte{0, 0, 0x10}, Channel: "can0", Timestamp: ts},
		can.Frame{ID: 0x18DAF110, Kind: can.KindExtended, Data: []byte{1}},
	)

	records, err := ReadAll(buf)
	require.Nil(t, err)
	require.Len(t, records, 2)

	frame := records[0].Frame()
	assert.Equal(t, uint32(0x100), frame.ID)
	assert.Equal(t, "rpm", frame.Name)
	assert.Equal(t, []byte{0, 0, 0x10}, frame.Data)
	assert.Equal(t, "can0", frame.Channel)
	assert.Equal(t, ts.UnixNano(), frame.Timestamp.UnixNano())
	assert.Equal(t, can.DirectionRx, frame.Direction)

	ext := records[1].Frame()
	assert.Equal(t, can.KindExtended, ext.Kind)
	assert.Equal(t, "msg_18DAF110", ext.Name)
}

func TestReadAllTruncated(t *testing.T) {
	buf := captureFrames(t, can.Frame{ID: 0x100, Data: []byte{1, 2, 3, 4}})
	data := buf.Bytes()
	_, err := ReadAll(bytes.NewReader(data[:len(data)-2]))
	assert.NotNil(t, err)
}

func TestReplayTransport(t *testing.T) {
	buf := captureFrames(t,
		can.Frame{ID: 0x100, Name: "rpm"},
		can.Frame{ID: 0x200},
	)
	replay, err := NewReplay(buf)
	require.Nil(t, err)
	require.Nil(t, replay.Connect(transport.Config{}))
	assert.Equal(t, 2, replay.Remaining())

	f, err := replay.Receive(time.Second)
	require.Nil(t, err)
	assert.Equal(t, uint32(0x100), f.ID)
	f, err = replay.Receive(time.Second)
	require.Nil(t, err)
	assert.Equal(t, uint32(0x200), f.ID)

	// Exhausted capture behaves like a quiet bus.
	start := time.Now()
	_, err = replay.Receive(50 * time.Millisecond)
	assert.Equal(t, errors.ErrReceiveTimeout, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestReplayFilters(t *testing.T) {
	buf := captureFrames(t,
		can.Frame{ID: 0x100},
		can.Frame{ID: 0x200},
	)
	replay, err := NewReplay(buf)
	require.Nil(t, err)
	require.Nil(t, replay.Connect(transport.Config{}))
	require.Nil(t, replay.SetFilters([]can.FilterRule{{ID: 0x200, Mask: 0x7FF}}))

	f, err := replay.Receive(time.Second)
	require.Nil(t, err)
	assert.Equal(t, uint32(0x200), f.ID)
	assert.Equal(t, 0, replay.Remaining())
}

func TestReplaySendCollected(t *testing.T) {
	replay, err := NewReplay(bytes.NewReader(nil))
	require.Nil(t, err)

	assert.Equal(t, errors.ErrNotConnected, replay.Send(can.Frame{ID: 0x100}))
	require.Nil(t, replay.Connect(transport.Config{}))
	require.Nil(t, replay.Send(can.Frame{ID: 0x100}))
	assert.Len(t, replay.Sent(), 1)
}

func TestWriterStickyError(t *testing.T) {
	w := NewWriter(failWriter{})
	assert.NotNil(t, w.Write(can.Frame{ID: 1}))
	assert.NotNil(t, w.Err())
	assert.Equal(t, 0, w.Count())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.ErrTransportClosed
}
