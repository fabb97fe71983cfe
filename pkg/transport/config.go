// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration surface accepted by adapter drivers.
// Unset options are omitted from Options() rather than passed through
// as empty values.
type Config struct {
	Interface     string
	Channel       string
	Bitrate       int
	Timeout       time.Duration
	FD            bool
	DataBitrate   int
	AppName       string
	Serial        string
	HardwareKind  string
	ReceiveOwn    bool
	FDDataBitrate int
	LogErrors     bool
	ErrorFilters  []uint32
	SerialNumber  string
}

// MaxDataLen is the payload limit for the negotiated mode.
func (c Config) MaxDataLen() int {
	if c.FD {
		return 64
	}
	return 8
}

// Options flattens the configuration to the option map handed to
// vendor drivers, with unset values removed.
func (c Config) Options() map[string]any {
	opts := map[string]any{}
	put := func(k string, v any) {
		switch t := v.(type) {
		case string:
			if t == "" {
				return
			}
		case int:
			if t == 0 {
				return
			}
		case bool:
			if !t {
				return
			}
		case time.Duration:
			if t == 0 {
				return
			}
		case []uint32:
			if len(t) == 0 {
				return
			}
		}
		opts[k] = v
	}
	put("interface", c.Interface)
	put("channel", c.Channel)
	put("bitrate", c.Bitrate)
	put("timeout", c.Timeout)
	put("fd", c.FD)
	put("data_bitrate", c.DataBitrate)
	put("app_name", c.AppName)
	put("serial", c.Serial)
	put("hw_type", c.HardwareKind)
	put("rx_own_msgs", c.ReceiveOwn)
	put("fd_data_bitrate", c.FDDataBitrate)
	put("log_errors", c.LogErrors)
	put("error_filters", c.ErrorFilters)
	put("serial_number", c.SerialNumber)
	return opts
}

type rawConfig struct {
	Interface     string   `yaml:"interface"`
	Channel       string   `yaml:"channel"`
	Bitrate       int      `yaml:"bitrate"`
	Timeout       string   `yaml:"timeout"`
	FD            bool     `yaml:"fd"`
	DataBitrate   int      `yaml:"data_bitrate"`
	AppName       string   `yaml:"app_name"`
	Serial        string   `yaml:"serial"`
	HardwareKind  string   `yaml:"hw_type"`
	ReceiveOwn    bool     `yaml:"rx_own_msgs"`
	FDDataBitrate int      `yaml:"fd_data_bitrate"`
	LogErrors     bool     `yaml:"log_errors"`
	ErrorFilters  []uint32 `yaml:"error_filters"`
	SerialNumber  string   `yaml:"serial_number"`
}

// UnmarshalYAML decodes the config from YAML; the timeout is given as
// a duration string ("500ms", "1s").
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw rawConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}
	c.Interface = raw.Interface
	c.Channel = raw.Channel
	c.Bitrate = raw.Bitrate
	c.FD = raw.FD
	c.DataBitrate = raw.DataBitrate
	c.AppName = raw.AppName
	c.Serial = raw.Serial
	c.HardwareKind = raw.HardwareKind
	c.ReceiveOwn = raw.ReceiveOwn
	c.FDDataBitrate = raw.FDDataBitrate
	c.LogErrors = raw.LogErrors
	c.ErrorFilters = raw.ErrorFilters
	c.SerialNumber = raw.SerialNumber
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	return nil
}
