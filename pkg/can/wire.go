// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package can

import (
	"encoding/binary"
	"fmt"
)

// Wire layout follows the Linux kernel can_frame (16 bytes) and
// canfd_frame (72 bytes) structures, little-endian:
//
//	0..3   can_id (flags EFF/RTR/ERR in the top bits)
//	4      len (data length code)
//	5      fd flags (canfd_frame only)
//	6..7   padding
//	8..    data (8 or 64 bytes)
//
// Frames with more than 8 data bytes encode to the canfd_frame layout;
// the decoder discriminates on buffer size.
const (
	wireFrameLen   = 16
	wireFDFrameLen = 72

	canEffFlag uint32 = 0x80000000
	canRtrFlag uint32 = 0x40000000
	canErrFlag uint32 = 0x20000000
)

// MarshalWire encodes the frame to the kernel frame layout.
func (f Frame) MarshalWire() ([]byte, error) {
	fd := len(f.Data) > MaxClassicLen
	if err := f.Validate(fd); err != nil {
		return nil, err
	}
	id := f.ID
	switch f.Kind {
	case KindExtended:
		id |= canEffFlag
	case KindRemote:
		id |= canRtrFlag
	case KindError, KindOverload:
		id |= canErrFlag
	}
	size := wireFrameLen
	if fd {
		size = wireFDFrameLen
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = uint8(len(f.Data))
	copy(buf[8:], f.Data)
	return buf, nil
}

// UnmarshalWire decodes a frame from the kernel frame layout.
func (f *Frame) UnmarshalWire(data []byte) error {
	var dataLen int
	switch len(data) {
	case wireFrameLen:
		dataLen = MaxClassicLen
	case wireFDFrameLen:
		dataLen = MaxFDLen
	default:
		return fmt.Errorf("frame buffer must be %d or %d bytes, got %d",
			wireFrameLen, wireFDFrameLen, len(data))
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	switch {
	case id&canErrFlag != 0:
		f.Kind = KindError
	case id&canRtrFlag != 0:
		f.Kind = KindRemote
	case id&canEffFlag != 0:
		f.Kind = KindExtended
	default:
		f.Kind = KindStandard
	}
	if f.Kind == KindExtended {
		f.ID = id & MaxExtendedID
	} else {
		f.ID = id & MaxStandardID
	}
	n := int(data[4])
	if n > dataLen {
		n = dataLen
	}
	f.DLC = uint8(n)
	f.Data = make([]byte, n)
	copy(f.Data, data[8:8+n])
	return nil
}
