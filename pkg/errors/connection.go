// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package errors

import "fmt"

var (
	ErrReceiveTimeout          = fmt.Errorf("receive timeout")
	ErrTransportClosed         = fmt.Errorf("transport closed")
	ErrNotConnected            = fmt.Errorf("not connected")
	ErrConnRedisRespIncomplete = fmt.Errorf("response incomplete")
	ErrConnectFail             = func(e error) error { return NewConnectionError(e, "connect failed") }
	ErrFilterPush              = func(e error) error { return NewConnectionError(e, "filter update failed") }
)

type ConnectionError struct {
	msg string
	err error
}

func NewConnectionError(e error, msg string) *ConnectionError {
	return &ConnectionError{msg: msg, err: e}
}

func (e *ConnectionError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("connection: %q - %v", e.msg, e.err)
	} else {
		return fmt.Sprintf("connection: %q", e.msg)
	}
}
