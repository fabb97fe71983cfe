// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package errors

import "fmt"

var (
	ErrTransmitFail = func(e error) error { return NewTransmitError(e, "send failed") }
	ErrFrameInvalid = func(m string) error { return NewTransmitError(nil, m) }
)

type TransmitError struct {
	msg string
	err error
}

func NewTransmitError(e error, msg string) *TransmitError {
	return &TransmitError{msg: msg, err: e}
}

func (e *TransmitError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("transmit: %q - %v", e.msg, e.err)
	} else {
		return fmt.Sprintf("transmit: %q", e.msg)
	}
}
