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
	"strings"

	"github.com/massenz/fsm-refmodel/api"
)

const ConfigurationVersionSeparator = ":"

type Transition struct {
	From  api.StateIdentity `yaml:"from" json:"from"`
	To    api.StateIdentity `yaml:"to" json:"to"`
	Event api.Command       `yaml:"event" json:"event"`
}

// Configuration describes one transition graph: the closed set of states it
// uses, the legal transitions between them, and the starting state. Built once
// at assembly and read-only thereafter; both resolution strategies are derived
// from it.
type Configuration struct {
	Name          string              `yaml:"name" json:"name"`
	Version       string              `yaml:"version" json:"version"`
	States        []api.StateIdentity `yaml:"states" json:"states"`
	Transitions   []Transition        `yaml:"transitions" json:"transitions"`
	StartingState api.StateIdentity   `yaml:"starting_state" json:"starting_state"`
}

func (c *Configuration) VersionID() string {
	return strings.Join([]string{c.Name, c.Version}, ConfigurationVersionSeparator)
}

// HasState checks that `state` is one of the Configuration's `States`.
func (c *Configuration) HasState(state api.StateIdentity) bool {
	for _, s := range c.States {
		if s == state {
			return true
		}
	}
	return false
}

// TransitionTable maps each identity to the set of identities directly
// reachable from it. A state with no entry (or an empty set) is terminal.
type TransitionTable map[api.StateIdentity]map[api.StateIdentity]bool

func (t TransitionTable) Allows(from api.StateIdentity, to api.StateIdentity) bool {
	return t[from][to]
}

func (t TransitionTable) Terminal(id api.StateIdentity) bool {
	return len(t[id]) == 0
}

// Table builds the legal-transition table for the Mediated strategy.
func (c *Configuration) Table() TransitionTable {
	table := make(TransitionTable)
	for _, t := range c.Transitions {
		if table[t.From] == nil {
			table[t.From] = make(map[api.StateIdentity]bool)
		}
		table[t.From][t.To] = true
	}
	return table
}

// RuleKey identifies one decision-table entry: the table is keyed by the
// StateIdentity enumeration, never by State instances.
type RuleKey struct {
	From    api.StateIdentity
	Command api.Command
}

// RuleSet maps (current identity, command) to the proposed next identity. It
// is the Mediated resolver's decision table; hosts may supply one that differs
// from the Configuration, in which case candidates are still validated against
// the TransitionTable.
type RuleSet map[RuleKey]api.StateIdentity

// Rules derives the decision table implied by the Configuration's transitions.
func (c *Configuration) Rules() RuleSet {
	rules := make(RuleSet)
	for _, t := range c.Transitions {
		rules[RuleKey{From: t.From, Command: t.Event}] = t.To
	}
	return rules
}

// Edges returns the declared successor edges for one state, used to assemble
// Embedded-strategy states; empty for a terminal state.
func (c *Configuration) Edges(id api.StateIdentity) map[api.Command]api.StateIdentity {
	edges := make(map[api.Command]api.StateIdentity)
	for _, t := range c.Transitions {
		if t.From == id {
			edges[t.Event] = t.To
		}
	}
	return edges
}
