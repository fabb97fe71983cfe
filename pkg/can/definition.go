// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package can

// MessageDefinition names a CAN identifier. Definitions are registered
// with the reader under their (unique) name and used to label received
// frames; they also carry a default payload for transmission.
type MessageDefinition struct {
	Name        string    `yaml:"name"`
	ID          uint32    `yaml:"id"`
	Kind        FrameKind `yaml:"-"`
	Description string    `yaml:"description"`
	Data        []byte    `yaml:"data"`
	DLC         uint8     `yaml:"dlc"`
	Channel     string    `yaml:"channel"`
}

// Frame builds a transmit frame from the definition's defaults.
func (d MessageDefinition) Frame() Frame {
	dlc := d.DLC
	if dlc == 0 {
		dlc = uint8(len(d.Data))
	}
	return Frame{
		ID:          d.ID,
		Data:        d.Data,
		Kind:        d.Kind,
		Name:        d.Name,
		Description: d.Description,
		DLC:         dlc,
		Direction:   DirectionTx,
		Channel:     d.Channel,
	}
}
