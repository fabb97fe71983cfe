// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"time"

	"github.com/automotive-go/canreader/pkg/can"
)

// Transport is the capability the reader core needs from an adapter
// driver. Implementations must be safe for concurrent use: the receive
// loop, the health supervisor and caller-initiated sends may all be in
// flight at the same time.
type Transport interface {
	Connect(cfg Config) error
	Disconnect() error
	Send(frame can.Frame) error

	// Receive blocks for at most timeout. It returns
	// errors.ErrReceiveTimeout when no frame arrived; that is the
	// expected idle outcome, not a failure.
	Receive(timeout time.Duration) (can.Frame, error)

	// SetFilters replaces the acceptance filter set as one bulk
	// update. An empty set means accept-all.
	SetFilters(rules []can.FilterRule) error
}
