/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package api

// StateIdentity is the enumerated tag identifying a state, independently of
// the instance implementing its behavior.
//
// Identities are used for equality, lookups and diagnostics; behavior dispatch
// always goes through the shared State instance resolved via the Registry.
type StateIdentity string

const (
	StateInit  StateIdentity = "init"
	StateRun   StateIdentity = "run"
	StateIdle  StateIdentity = "idle"
	StateSleep StateIdentity = "sleep"
	StateEnd   StateIdentity = "end"

	// StateError is reserved for diagnostics; it is never the target of a
	// committed transition.
	StateError StateIdentity = "error"

	// StateNone is the sentinel predecessor of a Context that has not
	// committed any transition yet.
	StateNone StateIdentity = "none"
)

// KnownIdentities enumerates every identity a Configuration may reference.
var KnownIdentities = []StateIdentity{
	StateInit, StateRun, StateIdle, StateSleep, StateEnd,
}

func (s StateIdentity) Known() bool {
	for _, id := range KnownIdentities {
		if s == id {
			return true
		}
	}
	return false
}

// Command is the tag of a StimulusEvent, from a closed set.
type Command string

const (
	CmdStart Command = "start"
	CmdStop  Command = "stop"
	CmdReset Command = "reset"
	CmdSleep Command = "sleep"
	CmdWake  Command = "wake"
	CmdHalt  Command = "halt"
)

var KnownCommands = []Command{
	CmdStart, CmdStop, CmdReset, CmdSleep, CmdWake, CmdHalt,
}

func (c Command) Known() bool {
	for _, cmd := range KnownCommands {
		if c == cmd {
			return true
		}
	}
	return false
}
