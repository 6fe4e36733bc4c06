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
	"github.com/massenz/fsm-refmodel/api"
)

// State is one named mode of behavior. Exactly one instance exists per
// identity process-wide (enforced by the Registry) and it is shared by
// reference across every Context that currently occupies it: implementations
// must not carry per-occupancy data, which belongs in the Context scratchpad.
//
// Both action phases are mandatory; an explicit no-op implementation is valid.
type State interface {
	// Identity is pure and constant for the instance's lifetime.
	Identity() api.StateIdentity

	// SequentialAction runs while the Context still points at this state,
	// before the transition for the event has been resolved: the clocked
	// effects of the event.
	SequentialAction(c *Context, evt api.StimulusEvent)

	// CombinationalAction runs on the state the Context has just committed
	// to, immediately after the commit: the effects that are a pure function
	// of the new state.
	CombinationalAction(c *Context, evt api.StimulusEvent)
}

// EmbeddedState is implemented by states that carry their own successor edges
// (the Embedded resolution strategy). The edges are declared at assembly time,
// so the transition graph stays inspectable via Successors without a central
// table.
type EmbeddedState interface {
	State

	// NextStateFor returns the successor instance for the event, or the
	// receiver itself when the event maps to no transition (self-loop).
	NextStateFor(evt api.StimulusEvent) State

	// Successors lists the identities reachable from this state; empty for a
	// terminal state.
	Successors() []api.StateIdentity
}
