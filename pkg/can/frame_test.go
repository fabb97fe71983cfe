// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package can

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		fd    bool
		ok    bool
	}{
		{name: "standard", frame: Frame{ID: 0x100, Data: []byte{1, 2}}, ok: true},
		{name: "standard max id", frame: Frame{ID: 0x7FF}, ok: true},
		{name: "standard id overflow", frame: Frame{ID: 0x800}, ok: false},
		{name: "extended", frame: Frame{ID: 0x18DAF110, Kind: KindExtended}, ok: true},
		{name: "extended id overflow", frame: Frame{ID: 0x20000000, Kind: KindExtended}, ok: false},
		{name: "classic payload limit", frame: Frame{ID: 1, Data: make([]byte, 8)}, ok: true},
		{name: "classic payload overflow", frame: Frame{ID: 1, Data: make([]byte, 9)}, ok: false},
		{name: "fd payload", frame: Frame{ID: 1, Data: make([]byte, 64)}, fd: true, ok: true},
		{name: "fd payload overflow", frame: Frame{ID: 1, Data: make([]byte, 65)}, fd: true, ok: false},
		{name: "remote uses 11 bit range", frame: Frame{ID: 0x800, Kind: KindRemote}, ok: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.frame.Validate(test.fd)
			if test.ok {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		})
	}
}

func TestWireRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		size  int
	}{
		{
			name:  "classic standard",
			frame: Frame{ID: 0x100, Data: []byte{0, 0, 0x10, 0, 0, 0, 0, 0}},
			size:  16,
		},
		{
			name:  "classic extended",
			frame: Frame{ID: 0x18DAF110, Kind: KindExtended, Data: []byte{1, 2, 3}},
			size:  16,
		},
		{
			name:  "remote",
			frame: Frame{ID: 0x7DF, Kind: KindRemote},
			size:  16,
		},
		{
			name:  "fd",
			frame: Frame{ID: 0x200, Data: make([]byte, 48)},
			size:  72,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf, err := test.frame.MarshalWire()
			require.Nil(t, err)
			require.Len(t, buf, test.size)

			var decoded Frame
			require.Nil(t, decoded.UnmarshalWire(buf))
			assert.Equal(t, test.frame.ID, decoded.ID)
			assert.Equal(t, test.frame.Kind, decoded.Kind)
			assert.Equal(t, len(test.frame.Data), len(decoded.Data))
			if len(test.frame.Data) > 0 {
				assert.Equal(t, test.frame.Data, decoded.Data)
			}
		})
	}
}

func TestUnmarshalWireBadLength(t *testing.T) {
	var frame Frame
	assert.NotNil(t, frame.UnmarshalWire(make([]byte, 12)))
	assert.NotNil(t, frame.UnmarshalWire(make([]byte, 17)))
}

func TestFilterRule(t *testing.T) {
	rule := FilterRule{ID: 0x100, Mask: 0x700}
	assert.True(t, rule.Matches(Frame{ID: 0x100}))
	assert.True(t, rule.Matches(Frame{ID: 0x1FF}))
	assert.False(t, rule.Matches(Frame{ID: 0x200}))
	assert.False(t, rule.Matches(Frame{ID: 0x100, Kind: KindExtended}))

	ext := FilterRule{ID: 0x18DAF110, Mask: 0x1FFFFFFF, Extended: true}
	assert.True(t, ext.Matches(Frame{ID: 0x18DAF110, Kind: KindExtended}))
	assert.False(t, ext.Matches(Frame{ID: 0x18DAF110}))
}

func TestMatchAny(t *testing.T) {
	frame := Frame{ID: 0x321}

	// Empty rule set accepts everything.
	assert.True(t, MatchAny(nil, frame))

	rules := []FilterRule{
		{ID: 0x100, Mask: 0x7FF},
		{ID: 0x321, Mask: 0x7FF},
	}
	assert.True(t, MatchAny(rules, frame))
	assert.False(t, MatchAny(rules[:1], frame))
}

func TestDefinitionFrame(t *testing.T) {
	def := MessageDefinition{
		Name:        "rpm",
		ID:          0x100,
		Description: "Engine speed",
		Data:        []byte{1, 2, 3, 4},
		Channel:     "can1",
	}
	frame := def.Frame()
	assert.Equal(t, uint32(0x100), frame.ID)
	assert.Equal(t, "rpm", frame.Name)
	assert.Equal(t, uint8(4), frame.DLC)
	assert.Equal(t, DirectionTx, frame.Direction)
	assert.Equal(t, "can1", frame.Channel)
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "msg_1A0", DefaultName(0x1A0))
	assert.Equal(t, "Received message ID 0x1A0", DefaultDescription(0x1A0))
}
