// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/automotive-go/canreader/pkg/can"
	"github.com/automotive-go/canreader/pkg/errors"
)

// messageRegistry maps definition names to definitions. Identifier
// lookup scans in registration order: the first registered definition
// with a matching identifier wins.
type messageRegistry struct {
	mu     sync.Mutex
	byName map[string]can.MessageDefinition
	order  []string
}

func (m *messageRegistry) init() {
	m.byName = make(map[string]can.MessageDefinition)
}

func (m *messageRegistry) register(def can.MessageDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[def.Name]; !ok {
		m.order = append(m.order, def.Name)
	}
	m.byName[def.Name] = def
}

func (m *messageRegistry) lookupByID(id uint32) (can.MessageDefinition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range m.order {
		if def := m.byName[name]; def.ID == id {
			return def, true
		}
	}
	return can.MessageDefinition{}, false
}

func (m *messageRegistry) lookupByName(name string) (can.MessageDefinition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	def, ok := m.byName[name]
	return def, ok
}

func (m *messageRegistry) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byName)
}

// RegisterMessage inserts or overwrites a message definition keyed by
// name. Last write wins.
func (r *Reader) RegisterMessage(def can.MessageDefinition) {
	r.registry.register(def)
	slog.Info(fmt.Sprintf("Reader: added CAN message: %s (ID: 0x%X)", def.Name, def.ID))
}

// RegisterMessages applies RegisterMessage in input order.
func (r *Reader) RegisterMessages(defs []can.MessageDefinition) {
	for _, def := range defs {
		r.RegisterMessage(def)
	}
}

// Message returns the definition registered under name.
func (r *Reader) Message(name string) (can.MessageDefinition, bool) {
	return r.registry.lookupByName(name)
}

// filterSet holds the registered acceptance filter rules. Rules take
// effect on the next Connect, when the Reader pushes the whole set as
// one bulk update.
type filterSet struct {
	mu    sync.Mutex
	rules []can.FilterRule
}

func (fs *filterSet) add(rule can.FilterRule) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.rules = append(fs.rules, rule)
}

func (fs *filterSet) remove(rule can.FilterRule) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	kept := fs.rules[:0]
	for _, r := range fs.rules {
		if r != rule {
			kept = append(kept, r)
		}
	}
	fs.rules = kept
}

func (fs *filterSet) clear() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.rules = nil
}

func (fs *filterSet) snapshot() []can.FilterRule {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	rules := make([]can.FilterRule, len(fs.rules))
	copy(rules, fs.rules)
	return rules
}

func (fs *filterSet) count() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.rules)
}

// AddFilter registers an acceptance filter rule.
func (r *Reader) AddFilter(rule can.FilterRule) {
	r.filters.add(rule)
	slog.Info(fmt.Sprintf("Reader: added filter: %s", rule))
}

// RemoveFilter removes all rules exactly matching (id, mask,
// extended). No-op if absent.
func (r *Reader) RemoveFilter(rule can.FilterRule) {
	r.filters.remove(rule)
	slog.Info(fmt.Sprintf("Reader: removed filter: %s", rule))
}

// ClearFilters drops all registered filter rules.
func (r *Reader) ClearFilters() {
	r.filters.clear()
	slog.Info("Reader: cleared all CAN filters")
}

// Filters returns a copy of the registered rule set.
func (r *Reader) Filters() []can.FilterRule {
	return r.filters.snapshot()
}

// PushFilters applies the current rule set to a connected transport
// without waiting for the next Connect.
func (r *Reader) PushFilters() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected {
		return nil
	}
	if err := r.trans.SetFilters(r.filters.snapshot()); err != nil {
		return errors.ErrFilterPush(err)
	}
	return nil
}
