// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
	"github.com/automotive-go/canreader/pkg/transport"
)

// FileConfig is the YAML document describing a reader: the bus
// configuration plus the message definitions and filter rules to
// register at construction.
type FileConfig struct {
	Bus      transport.Config        `yaml:"bus"`
	Messages []can.MessageDefinition `yaml:"messages"`
	Filters  []can.FilterRule        `yaml:"filters"`
}

// LoadConfig reads a reader configuration from a YAML file.
func LoadConfig(file string) (*FileConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.NewReaderError(err, "config file not readable")
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.NewReaderError(err, "config file not parseable")
	}
	// The registry is keyed by name; unnamed definitions would
	// silently collapse onto each other.
	for i, def := range fc.Messages {
		if def.Name == "" {
			return nil, errors.ErrReaderConfig(
				fmt.Sprintf("message %d has no name", i))
		}
	}
	slog.Debug(fmt.Sprintf("Reader: config: %s (%d messages, %d filters)",
		file, len(fc.Messages), len(fc.Filters)))
	return &fc, nil
}

// NewFromFile builds a Reader from a YAML configuration file, with
// its message definitions and filter rules already registered.
func NewFromFile(file string, t transport.Transport) (*Reader, error) {
	fc, err := LoadConfig(file)
	if err != nil {
		return nil, err
	}
	r, err := New(fc.Bus, t)
	if err != nil {
		return nil, err
	}
	r.RegisterMessages(fc.Messages)
	for _, rule := range fc.Filters {
		r.AddFilter(rule)
	}
	return r, nil
}
