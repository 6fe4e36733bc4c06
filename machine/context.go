/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package machine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
)

// ErrConcurrentHandle is returned when Handle is invoked on a Context while a
// previous call is still in flight. The engine does not queue: hosts that
// deliver events from multiple sources must serialize delivery per Context
// (e.g. the pubsub listener's single consumer goroutine).
var ErrConcurrentHandle = fmt.Errorf("Handle invoked while a previous call is still in flight")

// Context owns the current-state reference for one logical FSM instance and
// drives the action protocol for every stimulus event delivered to it.
//
// The protocol is fixed: terminal check, sequential phase on the old state,
// transition resolution, commit, combinational phase on the new state. The
// commit is the single point where the visible state changes, exactly once per
// accepted event, never mid-action.
type Context struct {
	id       string
	configId string
	logger   *log.Log
	resolver Resolver
	diags    *api.DiagnosticLog

	busy int32

	mux      sync.RWMutex
	current  State
	previous api.StateIdentity
	values   map[string]any
}

// NewContext creates a Context occupying `initial`, with no predecessor.
func NewContext(id string, configId string, initial State, resolver Resolver,
	diags *api.DiagnosticLog) *Context {
	if diags == nil {
		diags = api.NewDiagnosticLog()
	}
	return &Context{
		id:       id,
		configId: configId,
		logger:   log.NewLog(fmt.Sprintf("fsm{%s}", id)),
		resolver: resolver,
		diags:    diags,
		current:  initial,
		previous: api.StateNone,
		values:   make(map[string]any),
	}
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) ConfigID() string {
	return c.configId
}

// CurrentIdentity is the read-only accessor observers use between events.
func (c *Context) CurrentIdentity() api.StateIdentity {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.current.Identity()
}

// PreviousIdentity returns the identity of the immediately preceding state,
// or StateNone before the first committed transition.
func (c *Context) PreviousIdentity() api.StateIdentity {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.previous
}

// Diagnostics exposes the resolution outcomes for observers; read-only.
func (c *Context) Diagnostics() *api.DiagnosticLog {
	return c.diags
}

// SetLogLevel implements the log.Loggable interface.
func (c *Context) SetLogLevel(level log.LogLevel) {
	c.logger.Level = level
}

// Put stores a per-occupancy value: the opaque output channel state behavior
// writes through and external checkers read back.
func (c *Context) Put(key string, value any) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.values[key] = value
}

// Get retrieves a value written by state behavior; nil if missing.
func (c *Context) Get(key string) any {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.values[key]
}

// Values returns a snapshot copy of the scratchpad.
func (c *Context) Values() map[string]any {
	c.mux.RLock()
	defer c.mux.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Handle is the sole entry point for stimulus events. It always runs to
// completion: the two action phases (or the stay-in-place recovery) are done
// when it returns, and exactly one Diagnostic has been recorded. Resolution
// failures are reported through the diagnostics channel, never as an error;
// the only error is ErrConcurrentHandle for a second in-flight call.
func (c *Context) Handle(evt api.StimulusEvent) error {
	if !atomic.CompareAndSwapInt32(&c.busy, 0, 1) {
		c.logger.Error("concurrent Handle rejected for event %s", evt.EventId)
		return ErrConcurrentHandle
	}
	defer atomic.StoreInt32(&c.busy, 0)

	current := c.current
	from := current.Identity()
	c.logger.Debug("handling event `%s` in state `%s`", evt.Command, from)

	if c.resolver.Terminal(from) {
		current.CombinationalAction(c, evt)
		c.record(api.Diagnostic{
			Kind:    api.AlreadyTerminal,
			From:    from,
			To:      from,
			Command: evt.Command,
			EventId: evt.EventId,
			Details: fmt.Sprintf("state `%s` is terminal, event ignored", from),
		})
		return nil
	}

	current.SequentialAction(c, evt)
	resolution := c.resolver.Resolve(current, evt)
	switch resolution.Outcome {
	case OutcomeAccepted:
		c.commit(resolution.Next)
		resolution.Next.CombinationalAction(c, evt)
		c.record(api.Diagnostic{
			Kind:    api.TransitionAccepted,
			From:    from,
			To:      resolution.Next.Identity(),
			Command: evt.Command,
			EventId: evt.EventId,
		})
	case OutcomeTerminal:
		current.CombinationalAction(c, evt)
		c.record(api.Diagnostic{
			Kind:    api.AlreadyTerminal,
			From:    from,
			To:      from,
			Command: evt.Command,
			EventId: evt.EventId,
			Details: resolution.Details,
		})
	default:
		c.record(api.Diagnostic{
			Kind:    api.InvalidTransitionAttempted,
			From:    from,
			To:      resolution.Attempted,
			Command: evt.Command,
			EventId: evt.EventId,
			Details: resolution.Details,
		})
	}
	return nil
}

// commit reassigns the current-state reference. Pure bookkeeping: it never
// decides transitions.
func (c *Context) commit(next State) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.previous = c.current.Identity()
	c.current = next
}

func (c *Context) record(d api.Diagnostic) {
	d.MachineId = c.id
	d.Timestamp = time.Now()
	if d.Kind == api.InvalidTransitionAttempted {
		c.logger.Error("invalid transition attempted: %s", d.Details)
	} else {
		c.logger.Debug("recorded outcome: %s", d.String())
	}
	c.diags.Append(d)
}
