// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package errors

import "fmt"

var (
	ErrReaderClosed = fmt.Errorf("reader closed")
	ErrNoTransport  = fmt.Errorf("no transport")
	ErrReaderConfig = func(m string) error { return NewReaderError(nil, m) }
)

type ReaderError struct {
	msg string
	err error
}

func NewReaderError(e error, msg string) *ReaderError {
	return &ReaderError{msg: msg, err: e}
}

func (e *ReaderError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("reader: %q - %v", e.msg, e.err)
	} else {
		return fmt.Sprintf("reader: %q", e.msg)
	}
}
