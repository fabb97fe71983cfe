// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"sync"
	"time"

	"github.com/automotive-go/canreader/pkg/transport"
)

// Statistics are the reader's event counters. Values returned to
// callers are always a copy taken under the stats lock, so concurrent
// receive/transmit/health activity can never produce a torn read.
type Statistics struct {
	Total            uint64
	Received         uint64
	Transmitted      uint64
	Errors           uint64
	Filtered         uint64
	ConnectionErrors uint64
	LastError        string
}

type statistics struct {
	mu sync.Mutex
	s  Statistics
}

func (st *statistics) addReceived() {
	st.mu.Lock()
	st.s.Received += 1
	st.s.Total += 1
	st.mu.Unlock()
}

func (st *statistics) addTransmitted() {
	st.mu.Lock()
	st.s.Transmitted += 1
	st.s.Total += 1
	st.mu.Unlock()
}

func (st *statistics) recordError(err error) {
	st.mu.Lock()
	st.s.Errors += 1
	st.s.LastError = err.Error()
	st.mu.Unlock()
}

func (st *statistics) connectFailure(err error) {
	st.mu.Lock()
	st.s.ConnectionErrors += 1
	st.s.LastError = err.Error()
	st.mu.Unlock()
}

func (st *statistics) connectSuccess() {
	st.mu.Lock()
	st.s.ConnectionErrors = 0
	st.s.LastError = ""
	st.mu.Unlock()
}

func (st *statistics) snapshot() Statistics {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Status is a point-in-time snapshot of the reader for external
// consumers.
type Status struct {
	Session         string
	Interface       string
	Channel         string
	Bitrate         int
	Timeout         time.Duration
	FD              bool
	Connected       bool
	Health          HealthState
	LastRead        time.Time
	LastHealthCheck time.Time
	MessageCount    int
	FilterCount     int
	Monitoring      bool
	Stats           Statistics
}

// Statistics returns a copy of the current counters.
func (r *Reader) Statistics() Statistics {
	return r.stats.snapshot()
}

// Config returns the reader's transport configuration.
func (r *Reader) Config() transport.Config {
	return r.cfg
}

// Connected reports the connection state.
func (r *Reader) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// Status assembles a consistent snapshot of configuration, connection
// and health state, registry sizes and statistics.
func (r *Reader) Status() Status {
	health, lastCheck := r.health.snapshot()
	r.mu.Lock()
	connected := r.connected
	lastRead := r.lastRead
	r.mu.Unlock()
	return Status{
		Session:         r.Session,
		Interface:       r.cfg.Interface,
		Channel:         r.cfg.Channel,
		Bitrate:         r.cfg.Bitrate,
		Timeout:         r.cfg.Timeout,
		FD:              r.cfg.FD,
		Connected:       connected,
		Health:          health,
		LastRead:        lastRead,
		LastHealthCheck: lastCheck,
		MessageCount:    r.registry.count(),
		FilterCount:     r.filters.count(),
		Monitoring:      r.Monitoring(),
		Stats:           r.stats.snapshot(),
	}
}
