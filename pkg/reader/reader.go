// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
	"github.com/automotive-go/canreader/pkg/transport"
)

// Tuning knobs shared by all readers. Tests shorten these.
var (
	HealthInterval = 30 * time.Second
	PollInterval   = 100 * time.Millisecond
	ErrorBackoff   = 1 * time.Second
	StopGrace      = 5 * time.Second
)

// Reader is the host-side CAN bus client: it owns the connection
// lifecycle, the message and filter registries, statistics, and the
// two background loops (receive monitor and health supervisor).
//
// All methods are safe for concurrent use.
type Reader struct {
	Session string

	cfg   transport.Config
	trans transport.Transport

	mu        sync.Mutex // lifecycle: connected flag, health state, last read
	connected bool
	closed    bool
	lastRead  time.Time

	health  healthMonitor
	monitor monitor

	registry messageRegistry
	filters  filterSet
	stats    statistics
}

// New builds a Reader over the given transport and starts the health
// supervisor. Close must be called to stop it again.
func New(cfg transport.Config, t transport.Transport) (*Reader, error) {
	if t == nil {
		return nil, errors.ErrNoTransport
	}
	if cfg.Interface == "" {
		cfg.Interface = "socketcan"
	}
	if cfg.Channel == "" {
		cfg.Channel = "can0"
	}
	if cfg.Bitrate == 0 {
		cfg.Bitrate = 500000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 1 * time.Second
	}
	r := &Reader{
		Session: uuid.NewString(),
		cfg:     cfg,
		trans:   t,
	}
	r.registry.init()
	r.startHealthMonitor()
	return r, nil
}

// Connect establishes the transport. It is idempotent: an already
// connected reader returns nil immediately. Registered filter rules
// are pushed as a single bulk update.
func (r *Reader) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectLocked()
}

func (r *Reader) connectLocked() error {
	if r.closed {
		return errors.ErrReaderClosed
	}
	if r.connected {
		return nil
	}
	if err := r.trans.Connect(r.cfg); err != nil {
		r.stats.connectFailure(err)
		slog.Error(fmt.Sprintf("Reader: failed to connect to CAN bus: %v", err))
		return errors.ErrConnectFail(err)
	}
	// One bulk update with the whole current rule set; an empty set
	// restores accept-all.
	if err := r.trans.SetFilters(r.filters.snapshot()); err != nil {
		r.trans.Disconnect()
		r.stats.connectFailure(err)
		slog.Error(fmt.Sprintf("Reader: failed to apply filters: %v", err))
		return errors.ErrFilterPush(err)
	}
	r.connected = true
	r.stats.connectSuccess()
	slog.Info(fmt.Sprintf("Reader: connected to CAN bus: %s:%s at %d bps [%s]",
		r.cfg.Interface, r.cfg.Channel, r.cfg.Bitrate, r.Session))
	return nil
}

// ensureConnected performs the one implicit connect attempt granted to
// Send and ReadMessages.
func (r *Reader) ensureConnected() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectLocked()
}

// Disconnect stops the monitor first, then releases the transport.
// Teardown errors are logged, not returned. Idempotent.
func (r *Reader) Disconnect() {
	r.StopMonitoring()

	r.mu.Lock()
	wasConnected := r.connected
	if r.connected {
		if err := r.trans.Disconnect(); err != nil {
			slog.Error(fmt.Sprintf("Reader: error during disconnect: %v", err))
		}
		r.connected = false
	}
	r.mu.Unlock()

	if wasConnected {
		slog.Info("Reader: disconnected from CAN bus")
	}
}

// Send transmits one frame. A disconnected reader attempts exactly one
// implicit Connect; a failed connect fails the send without touching
// the transmit counters. Exactly one transport send per call, never
// retried.
func (r *Reader) Send(frame can.Frame) error {
	if err := r.ensureConnected(); err != nil {
		return err
	}
	if err := frame.Validate(r.cfg.FD); err != nil {
		return errors.ErrFrameInvalid(err.Error())
	}
	frame.Direction = can.DirectionTx
	if frame.Channel == "" {
		frame.Channel = r.cfg.Channel
	}
	if frame.DLC == 0 {
		frame.DLC = uint8(len(frame.Data))
	}
	if err := r.trans.Send(frame); err != nil {
		r.stats.recordError(err)
		slog.Error(fmt.Sprintf("Reader: failed to send message %s: %v", frame.Name, err))
		return errors.ErrTransmitFail(err)
	}
	r.stats.addTransmitted()
	slog.Info(fmt.Sprintf("Reader: sent message: %s (ID: 0x%X)", frame.Name, frame.ID))
	return nil
}

// ReadMessages drains the bus until the timeout elapses, returning the
// received frames enriched against the message registry. A zero
// timeout uses the configured default. Failures yield an empty slice;
// inspect Status for the cause.
func (r *Reader) ReadMessages(timeout time.Duration) []can.Frame {
	if timeout <= 0 {
		timeout = r.cfg.Timeout
	}
	if err := r.ensureConnected(); err != nil {
		return nil
	}
	var frames []can.Frame
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		frame, err := r.receiveOne(PollInterval)
		if err != nil {
			if goerrors.Is(err, errors.ErrReceiveTimeout) {
				continue
			}
			slog.Error(fmt.Sprintf("Reader: error reading message: %v", err))
			break
		}
		frames = append(frames, frame)
	}
	return frames
}

// receiveOne polls the transport once and runs the receive pipeline:
// tag direction, enrich from the registry, count into statistics.
func (r *Reader) receiveOne(timeout time.Duration) (can.Frame, error) {
	frame, err := r.trans.Receive(timeout)
	if err != nil {
		if !goerrors.Is(err, errors.ErrReceiveTimeout) {
			r.stats.recordError(err)
		}
		return can.Frame{}, err
	}
	frame.Direction = can.DirectionRx
	if frame.Timestamp.IsZero() {
		frame.Timestamp = time.Now()
	}
	if frame.Channel == "" {
		frame.Channel = r.cfg.Channel
	}
	frame.Name = can.DefaultName(frame.ID)
	frame.Description = can.DefaultDescription(frame.ID)
	if def, ok := r.registry.lookupByID(frame.ID); ok {
		frame.Name = def.Name
		frame.Description = def.Description
	}
	r.stats.addReceived()
	r.mu.Lock()
	r.lastRead = frame.Timestamp
	r.mu.Unlock()
	return frame, nil
}

// FrameData is one entry of the ReadData map.
type FrameData struct {
	Value       []byte
	ID          uint32
	Timestamp   time.Time
	Description string
}

// ReadData performs one ReadMessages pass and reshapes the result as a
// name-keyed map. Later frames with the same name overwrite earlier
// ones.
func (r *Reader) ReadData() map[string]FrameData {
	data := map[string]FrameData{}
	for _, frame := range r.ReadMessages(0) {
		data[frame.Name] = FrameData{
			Value:       frame.Data,
			ID:          frame.ID,
			Timestamp:   frame.Timestamp,
			Description: frame.Description,
		}
	}
	return data
}

// Close stops the health supervisor and the monitor, releases the
// transport and marks the reader closed. Idempotent.
func (r *Reader) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.stopHealthMonitor()
	r.Disconnect()
	r.health.reset()
	slog.Info(fmt.Sprintf("Reader: closed CAN bus reader: %s:%s", r.cfg.Interface, r.cfg.Channel))
}

// Send transmits a single frame over a fresh reader, then closes it.
func Send(cfg transport.Config, t transport.Transport, id uint32, data []byte) error {
	r, err := New(cfg, t)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Send(can.Frame{
		ID:          id,
		Data:        data,
		Kind:        can.KindStandard,
		Name:        can.DefaultName(id),
		Description: fmt.Sprintf("Message ID 0x%X", id),
	})
}

// Read drains frames for the given timeout over a fresh reader, then
// closes it.
func Read(cfg transport.Config, t transport.Transport, timeout time.Duration) ([]can.Frame, error) {
	r, err := New(cfg, t)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadMessages(timeout), nil
}
