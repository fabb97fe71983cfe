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

	"github.com/automotive-go/canreader/pkg/errors"
)

// HealthState is the supervisor's verdict on connection liveness.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthHealthy
	HealthUnhealthy
)

func (h HealthState) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	}
	return "unknown"
}

// healthMonitor runs from reader construction until Close, probing
// liveness every HealthInterval.
type healthMonitor struct {
	mu        sync.Mutex
	state     HealthState
	lastCheck time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func (h *healthMonitor) set(state HealthState) {
	h.mu.Lock()
	h.state = state
	h.lastCheck = time.Now()
	h.mu.Unlock()
}

func (h *healthMonitor) reset() {
	h.mu.Lock()
	h.state = HealthUnknown
	h.mu.Unlock()
}

func (h *healthMonitor) snapshot() (HealthState, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.lastCheck
}

func (r *Reader) startHealthMonitor() {
	ctx, cancel := context.WithCancel(context.Background())
	r.health.cancel = cancel
	r.health.done = make(chan struct{})
	go func() {
		defer close(r.health.done)
		for {
			if err := r.CheckHealth(); err != nil {
				slog.Debug(fmt.Sprintf("Reader: health check: %v", err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(HealthInterval):
			}
		}
	}()
}

func (r *Reader) stopHealthMonitor() {
	r.health.cancel()
	select {
	case <-r.health.done:
	case <-time.After(StopGrace):
		slog.Warn("Reader: health monitor did not stop within grace period")
	}
}

// CheckHealth probes connection liveness once. A disconnected reader
// is Unhealthy without side effects. A connected reader performs one
// short receive probe: a quiet bus is still healthy, only a transport
// error is not. A frame picked up by the probe runs through the normal
// receive pipeline and is counted.
func (r *Reader) CheckHealth() error {
	r.mu.Lock()
	connected := r.connected
	r.mu.Unlock()
	if !connected {
		r.health.set(HealthUnhealthy)
		return errors.ErrNotConnected
	}
	_, err := r.receiveOne(PollInterval)
	if err != nil && !goerrors.Is(err, errors.ErrReceiveTimeout) {
		r.health.set(HealthUnhealthy)
		slog.Error(fmt.Sprintf("Reader: health check failed: %v", err))
		return err
	}
	r.health.set(HealthHealthy)
	return nil
}

// Health returns the current health state and when it was determined.
func (r *Reader) Health() (HealthState, time.Time) {
	return r.health.snapshot()
}
