// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package can

import (
	"fmt"
	"time"
)

// FrameKind discriminates the CAN frame variants.
type FrameKind int

const (
	KindStandard FrameKind = iota
	KindExtended
	KindRemote
	KindError
	KindOverload
)

func (k FrameKind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindExtended:
		return "extended"
	case KindRemote:
		return "remote"
	case KindError:
		return "error"
	case KindOverload:
		return "overload"
	}
	return "unknown"
}

// Direction marks a frame as received from or transmitted to the bus.
type Direction int

const (
	DirectionRx Direction = iota
	DirectionTx
)

// Identifier limits.
const (
	MaxStandardID uint32 = 0x7FF
	MaxExtendedID uint32 = 0x1FFFFFFF

	// Payload limits for classic CAN and CAN FD.
	MaxClassicLen = 8
	MaxFDLen      = 64
)

// Frame is a single CAN frame together with the metadata the reader
// attaches on receipt (name/description from the message registry,
// direction, timestamp, channel).
type Frame struct {
	ID          uint32    `yaml:"id"`
	Data        []byte    `yaml:"data"`
	Kind        FrameKind `yaml:"-"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	DLC         uint8     `yaml:"dlc"`
	Direction   Direction `yaml:"-"`
	Timestamp   time.Time `yaml:"-"`
	Channel     string    `yaml:"channel"`
}

// Extended reports whether the frame carries a 29 bit identifier.
func (f Frame) Extended() bool {
	return f.Kind == KindExtended
}

// Validate checks identifier width against the frame kind and payload
// length against the negotiated mode (classic or FD).
func (f Frame) Validate(fd bool) error {
	maxLen := MaxClassicLen
	if fd {
		maxLen = MaxFDLen
	}
	if len(f.Data) > maxLen {
		return fmt.Errorf("payload length %d exceeds limit %d", len(f.Data), maxLen)
	}
	if f.Extended() {
		if f.ID > MaxExtendedID {
			return fmt.Errorf("identifier 0x%X exceeds 29 bit range", f.ID)
		}
	} else {
		if f.ID > MaxStandardID {
			return fmt.Errorf("identifier 0x%X exceeds 11 bit range", f.ID)
		}
	}
	return nil
}

// DefaultName is the label applied to received frames which match no
// registered message definition.
func DefaultName(id uint32) string {
	return fmt.Sprintf("msg_%X", id)
}

func DefaultDescription(id uint32) string {
	return fmt.Sprintf("Received message ID 0x%X", id)
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (ID: 0x%X) = %v", f.Name, f.ID, f.Data)
}
