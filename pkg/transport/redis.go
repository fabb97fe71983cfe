// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	red "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
)

var (
	recvTimeout = 1 // seconds, CANBUS_TIMEOUT
)

const frameMessageIdentifier string = "CANF"

type RedisEndpoint struct {
	pull        string
	push        string
	recvTimeout time.Duration
}

// RedisTransport moves CAN frames over Redis lists, the virtual bus
// used by distributed test rigs. Frames travel as a msgpack envelope
// (identifier, channel, kernel-layout frame bytes); filters are
// applied on the receive side.
type RedisTransport struct {
	Url string

	endpoint RedisEndpoint

	ctx     context.Context
	version string
	channel string

	mu      sync.Mutex // guards client and filters
	client  *red.Client
	filters []can.FilterRule
}

// snapshotClient returns the client handle, or nil after Disconnect.
// Callers run Redis commands on the snapshot so a concurrent teardown
// cannot pull the handle out from under a blocking BRPOP.
func (r *RedisTransport) snapshotClient() *red.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client
}

func (r *RedisTransport) Connect(cfg Config) error {
	slog.Info(fmt.Sprintf("Redis: Connect: %s", r.Url))
	r.channel = cfg.Channel
	if r.channel == "" {
		r.channel = "can0"
	}
	r.endpoint.push = fmt.Sprintf("canbus.tx.%s", r.channel)
	r.endpoint.pull = fmt.Sprintf("canbus.rx.%s", r.channel)
	if r.endpoint.recvTimeout == 0 {
		if cfg.Timeout > 0 {
			r.endpoint.recvTimeout = cfg.Timeout
		} else {
			timeout, err := strconv.Atoi(os.Getenv("CANBUS_TIMEOUT"))
			if err != nil {
				timeout = recvTimeout
			}
			r.endpoint.recvTimeout = time.Duration(timeout) * time.Second
		}
	}
	slog.Info(fmt.Sprintf("Redis: PULL: %s", r.endpoint.pull))
	slog.Info(fmt.Sprintf("Redis: PUSH: %s", r.endpoint.push))

	r.ctx = context.Background()
	opt, err := red.ParseURL(r.Url)
	if err != nil {
		return err
	}
	client := red.NewClient(opt)

	c := client.InfoMap(r.ctx, "server")
	if c.Err() != nil {
		return c.Err()
	}
	r.version = c.Item("Server", "redis_version")
	slog.Info(fmt.Sprintf("Redis: Version: %s", r.version))

	r.mu.Lock()
	r.client = client
	r.mu.Unlock()
	return nil
}

func (r *RedisTransport) Disconnect() error {
	slog.Info(fmt.Sprintf("Redis: Disconnect:"))
	r.mu.Lock()
	client := r.client
	r.client = nil
	r.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

func (r *RedisTransport) Send(frame can.Frame) error {
	client := r.snapshotClient()
	if client == nil {
		return errors.ErrTransportClosed
	}
	wire, err := frame.MarshalWire()
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	enc := msgpack.NewEncoder(buf)
	enc.EncodeString(frameMessageIdentifier)
	enc.EncodeString(r.channel)
	enc.EncodeBytes(wire)
	d := buf.Bytes()
	slog.Debug(fmt.Sprintf("Redis: LPUSH -> %s (%d bytes)", r.endpoint.push, len(d)))
	c := client.LPush(r.ctx, r.endpoint.push, d)
	return c.Err()
}

func (r *RedisTransport) Receive(timeout time.Duration) (frame can.Frame, err error) {
	client := r.snapshotClient()
	if client == nil {
		return can.Frame{}, errors.ErrTransportClosed
	}
	deadline := time.Now().Add(timeout)
	for {
		remain := time.Until(deadline)
		if remain <= 0 {
			return can.Frame{}, errors.ErrReceiveTimeout
		}
		slog.Debug(fmt.Sprintf("Redis: BRPOP <- %s (timeout=%v)", r.endpoint.pull, remain))
		c := client.BRPop(r.ctx, remain, r.endpoint.pull)
		if c.Err() != nil {
			if c.Err() == red.Nil {
				return can.Frame{}, errors.ErrReceiveTimeout
			}
			return can.Frame{}, errors.NewConnectionError(c.Err(), "receive failed")
		}
		if len(c.Val()) != 2 {
			return can.Frame{}, errors.ErrConnRedisRespIncomplete
		}

		frame, err = r.decode([]byte(c.Val()[1]))
		if err != nil {
			return can.Frame{}, err
		}
		r.mu.Lock()
		pass := can.MatchAny(r.filters, frame)
		r.mu.Unlock()
		if !pass {
			continue
		}
		frame.Channel = r.channel
		frame.Timestamp = time.Now()
		return frame, nil
	}
}

func (r *RedisTransport) decode(buf []byte) (frame can.Frame, err error) {
	dec := msgpack.NewDecoder(bytes.NewReader(buf))
	identifier, err := dec.DecodeString()
	if err != nil {
		return
	}
	if identifier != frameMessageIdentifier {
		err = errors.NewConnectionError(nil, fmt.Sprintf("unexpected message identifier: %q", identifier))
		return
	}
	if _, err = dec.DecodeString(); err != nil { // channel
		return
	}
	wire, err := dec.DecodeBytes()
	if err != nil {
		return
	}
	err = frame.UnmarshalWire(wire)
	return
}

func (r *RedisTransport) SetFilters(rules []can.FilterRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = make([]can.FilterRule, len(rules))
	copy(r.filters, rules)
	slog.Info(fmt.Sprintf("Redis: SetFilters: %d rules", len(rules)))
	return nil
}
