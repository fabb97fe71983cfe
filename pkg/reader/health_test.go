// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
	"github.com/automotive-go/canreader/pkg/transport"
)

func TestHealthUnhealthyWhenDisconnected(t *testing.T) {
	r := newTestReader(t, &transport.StubTransport{})

	// The supervisor runs from construction; the first check lands
	// shortly after New.
	require.Eventually(t, func() bool {
		state, _ := r.Health()
		return state == HealthUnhealthy
	}, 2*time.Second, 10*time.Millisecond)

	err := r.CheckHealth()
	assert.Equal(t, errors.ErrNotConnected, err)
	_, lastCheck := r.Health()
	assert.False(t, lastCheck.IsZero())
}

func TestHealthHealthyOnQuietBus(t *testing.T) {
	stub := &transport.StubTransport{}
	r := newTestReader(t, stub)
	require.Nil(t, r.Connect())

	// No frames on the bus: the probe times out, which is healthy.
	require.Nil(t, r.CheckHealth())
	state, _ := r.Health()
	assert.Equal(t, HealthHealthy, state)
}

func TestHealthProbeCountsFrames(t *testing.T) {
	stub := &transport.StubTransport{}
	r := newTestReader(t, stub)
	require.Nil(t, r.Connect())
	stub.Push(can.Frame{ID: 0x100})

	require.Nil(t, r.CheckHealth())
	assert.Equal(t, uint64(1), r.Statistics().Received)
}

func TestHealthUnhealthyOnTransportError(t *testing.T) {
	stub := &transport.StubTransport{}
	r := newTestReader(t, stub)
	require.Nil(t, r.Connect())
	stub.SetReceiveErr(errors.ErrTransportClosed)

	err := r.CheckHealth()
	require.NotNil(t, err)
	state, _ := r.Health()
	assert.Equal(t, HealthUnhealthy, state)
	assert.Equal(t, errors.ErrTransportClosed.Error(), r.Statistics().LastError)
}

// Health history does not survive a disconnect: the state is
// unhealthy whenever the reader is disconnected.
func TestHealthHistoryReset(t *testing.T) {
	stub := &transport.StubTransport{}
	r := newTestReader(t, stub)
	require.Nil(t, r.Connect())
	require.Nil(t, r.CheckHealth())

	r.Disconnect()
	r.CheckHealth()
	state, _ := r.Health()
	assert.Equal(t, HealthUnhealthy, state)
}

func TestHealthSupervisorLoop(t *testing.T) {
	restore := HealthInterval
	HealthInterval = 50 * time.Millisecond
	defer func() { HealthInterval = restore }()

	stub := &transport.StubTransport{}
	r := newTestReader(t, stub)
	require.Nil(t, r.Connect())

	// The supervisor flips the state to healthy without any manual
	// CheckHealth call.
	require.Eventually(t, func() bool {
		state, _ := r.Health()
		return state == HealthHealthy
	}, 2*time.Second, 10*time.Millisecond)

	// Errors do not stop the supervisor.
	stub.SetReceiveErr(errors.ErrTransportClosed)
	require.Eventually(t, func() bool {
		state, _ := r.Health()
		return state == HealthUnhealthy
	}, 2*time.Second, 10*time.Millisecond)

	stub.SetReceiveErr(nil)
	require.Eventually(t, func() bool {
		state, _ := r.Health()
		return state == HealthHealthy
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthStateString(t *testing.T) {
	assert.Equal(t, "unknown", HealthUnknown.String())
	assert.Equal(t, "healthy", HealthHealthy.String())
	assert.Equal(t, "unhealthy", HealthUnhealthy.String())
}
