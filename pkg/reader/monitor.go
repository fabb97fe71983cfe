// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
)

// monitor is the receive loop state machine: Stopped or Running.
type monitor struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// StartMonitoring spawns the background receive loop. Each received
// frame is tagged, enriched, counted and handed to the callback; a nil
// callback sends frames to the log sink instead. No-op when the loop
// is already running.
func (r *Reader) StartMonitoring(callback func(can.Frame)) {
	r.monitor.mu.Lock()
	defer r.monitor.mu.Unlock()
	if r.monitor.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.monitor.running = true
	r.monitor.cancel = cancel
	r.monitor.done = make(chan struct{})
	go r.monitorLoop(ctx, r.monitor.done, callback)
	slog.Info("Reader: started CAN bus monitoring")
}

// StopMonitoring signals the loop to stop and waits up to StopGrace
// for it to exit. A loop stuck in the transport past the grace period
// is abandoned, not killed; StopMonitoring returns regardless.
func (r *Reader) StopMonitoring() {
	r.monitor.mu.Lock()
	if !r.monitor.running {
		r.monitor.mu.Unlock()
		return
	}
	r.monitor.running = false
	r.monitor.cancel()
	done := r.monitor.done
	r.monitor.mu.Unlock()

	select {
	case <-done:
	case <-time.After(StopGrace):
		slog.Warn("Reader: monitor did not stop within grace period")
	}
	slog.Info("Reader: stopped CAN bus monitoring")
}

// Monitoring reports whether the receive loop is running.
func (r *Reader) Monitoring() bool {
	r.monitor.mu.Lock()
	defer r.monitor.mu.Unlock()
	return r.monitor.running
}

func (r *Reader) monitorLoop(ctx context.Context, done chan struct{}, callback func(can.Frame)) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		err := r.ensureConnected()
		var frame can.Frame
		if err == nil {
			frame, err = r.receiveOne(PollInterval)
		}
		if err != nil {
			if goerrors.Is(err, errors.ErrReceiveTimeout) {
				continue
			}
			slog.Error(fmt.Sprintf("Reader: monitor error: %v", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(ErrorBackoff):
			}
			continue
		}
		if callback != nil {
			callback(frame)
		} else {
			slog.Info(fmt.Sprintf("Reader: monitored: %s", frame))
		}
	}
}
