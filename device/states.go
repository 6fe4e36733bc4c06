/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Package device implements the reference model of a simple powered device,
// the concrete instantiation of the engine used by the demo harness and the
// test suites. Each state writes its effects to the Context scratchpad, so an
// external checker can compare them against the observed system.
package device

import (
	"fmt"
	"sort"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

// Scratchpad keys written by the device states.
const (
	KeyTrace    = "trace"
	KeyCycles   = "cycles"
	KeyPower    = "power"
	KeyShutdown = "shutdown"
)

// Values for the KeyPower output.
const (
	PowerOff     = "off"
	PowerOn      = "on"
	PowerStandby = "standby"
	PowerLow     = "low"
)

// deviceState carries the identity and the assembly-time successor edges
// shared by all concrete states. The edges only matter under the Embedded
// strategy; `self` is the concrete state embedding this one, returned for
// self-loops.
type deviceState struct {
	id       api.StateIdentity
	self     machine.State
	edges    map[api.Command]api.StateIdentity
	registry *machine.Registry
}

func (s *deviceState) Identity() api.StateIdentity {
	return s.id
}

func (s *deviceState) Successors() []api.StateIdentity {
	seen := make(map[api.StateIdentity]bool)
	for _, to := range s.edges {
		seen[to] = true
	}
	out := make([]api.StateIdentity, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *deviceState) NextStateFor(evt api.StimulusEvent) machine.State {
	to, ok := s.edges[evt.Command]
	if !ok {
		return s.self
	}
	next, err := s.registry.InstanceFor(to)
	if err != nil {
		api.Logger.Error("cannot resolve successor `%s` of `%s`: %v", to, s.id, err)
		return s.self
	}
	return next
}

// trace appends one entry to the ordered phase log in the scratchpad. Handle
// serializes phases, so read-modify-write is safe here.
func trace(c *machine.Context, format string, v ...any) {
	entries, _ := c.Get(KeyTrace).([]string)
	c.Put(KeyTrace, append(entries, fmt.Sprintf(format, v...)))
}

// Trace returns the ordered phase log recorded so far for the Context.
func Trace(c *machine.Context) []string {
	entries, _ := c.Get(KeyTrace).([]string)
	return entries
}

type initState struct {
	deviceState
}

func (s *initState) SequentialAction(c *machine.Context, evt api.StimulusEvent) {
	trace(c, "init/seq:%s", evt.Command)
}

func (s *initState) CombinationalAction(c *machine.Context, evt api.StimulusEvent) {
	c.Put(KeyPower, PowerOff)
	c.Put(KeyCycles, 0)
	trace(c, "init/comb")
}

type runState struct {
	deviceState
}

func (s *runState) SequentialAction(c *machine.Context, evt api.StimulusEvent) {
	trace(c, "run/seq:%s", evt.Command)
}

// CombinationalAction counts every entry into run, self-loops included.
func (s *runState) CombinationalAction(c *machine.Context, evt api.StimulusEvent) {
	cycles, _ := c.Get(KeyCycles).(int)
	c.Put(KeyCycles, cycles+1)
	c.Put(KeyPower, PowerOn)
	trace(c, "run/comb")
}

type idleState struct {
	deviceState
}

func (s *idleState) SequentialAction(c *machine.Context, evt api.StimulusEvent) {
	trace(c, "idle/seq:%s", evt.Command)
}

func (s *idleState) CombinationalAction(c *machine.Context, evt api.StimulusEvent) {
	c.Put(KeyPower, PowerStandby)
	trace(c, "idle/comb")
}

type sleepState struct {
	deviceState
}

func (s *sleepState) SequentialAction(c *machine.Context, evt api.StimulusEvent) {
	trace(c, "sleep/seq:%s", evt.Command)
}

func (s *sleepState) CombinationalAction(c *machine.Context, evt api.StimulusEvent) {
	c.Put(KeyPower, PowerLow)
	trace(c, "sleep/comb")
}

type endState struct {
	deviceState
}

// SequentialAction on End is an explicit no-op: the state is only ever
// entered, never left, and all its effects are combinational.
func (s *endState) SequentialAction(c *machine.Context, evt api.StimulusEvent) {
}

func (s *endState) CombinationalAction(c *machine.Context, evt api.StimulusEvent) {
	c.Put(KeyPower, PowerOff)
	c.Put(KeyShutdown, true)
	trace(c, "end/comb")
}
