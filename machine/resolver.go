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

	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
)

type Outcome int8

const (
	OutcomeAccepted Outcome = iota
	OutcomeRejected
	OutcomeTerminal
)

// Resolution is the result of resolving one (state, event) pair. On rejection
// `Next` is the unchanged current state and `Attempted` names the candidate
// that failed validation (StateError when no rule mapped the command).
type Resolution struct {
	Next      State
	Outcome   Outcome
	Attempted api.StateIdentity
	Details   string
}

// Resolver computes (and optionally validates) the candidate next state for a
// given current state and event.
type Resolver interface {
	Resolve(current State, evt api.StimulusEvent) Resolution

	// Terminal reports whether the identity has no outbound transitions. The
	// Context consults it before the sequential phase, so terminal states run
	// only their combinational action.
	Terminal(id api.StateIdentity) bool
}

// MediatedResolver is the single authority holding the full legal-transition
// graph: a decision table proposes the candidate and the TransitionTable
// validates it. Invalid candidates are reported and the machine stays in
// place; the run is never aborted. Keeping both computation and validation at
// this one call site is what makes every current/next pair observable
// centrally.
type MediatedResolver struct {
	logger   *log.Log
	rules    RuleSet
	table    TransitionTable
	registry *Registry
}

// NewMediatedResolver builds a resolver from an explicit decision table and
// legal-transition table. The two are validated against each other at resolve
// time, not at construction: a rule proposing a candidate outside the table is
// reported as an invalid transition.
func NewMediatedResolver(rules RuleSet, table TransitionTable, registry *Registry) *MediatedResolver {
	return &MediatedResolver{
		logger:   log.NewLog("resolver.mediated"),
		rules:    rules,
		table:    table,
		registry: registry,
	}
}

// MediatedResolverFromConfiguration derives both tables from the same
// Configuration, which guarantees they agree.
func MediatedResolverFromConfiguration(cfg *Configuration, registry *Registry) *MediatedResolver {
	return NewMediatedResolver(cfg.Rules(), cfg.Table(), registry)
}

func (r *MediatedResolver) Terminal(id api.StateIdentity) bool {
	return r.table.Terminal(id)
}

func (r *MediatedResolver) Resolve(current State, evt api.StimulusEvent) Resolution {
	from := current.Identity()
	if r.Terminal(from) {
		return Resolution{
			Next:      current,
			Outcome:   OutcomeTerminal,
			Attempted: from,
			Details:   fmt.Sprintf("state `%s` is terminal, event ignored", from),
		}
	}
	proposed, ok := r.rules[RuleKey{From: from, Command: evt.Command}]
	if !ok {
		details := fmt.Sprintf("no rule maps command `%s` from state `%s`", evt.Command, from)
		r.logger.Error("invalid transition attempted: %s", details)
		return Resolution{
			Next:      current,
			Outcome:   OutcomeRejected,
			Attempted: api.StateError,
			Details:   details,
		}
	}
	if !r.table.Allows(from, proposed) {
		details := fmt.Sprintf("transition `%s` -> `%s` is not in the legal set for `%s`",
			from, proposed, from)
		r.logger.Error("invalid transition attempted: %s", details)
		return Resolution{
			Next:      current,
			Outcome:   OutcomeRejected,
			Attempted: proposed,
			Details:   details,
		}
	}
	next, err := r.registry.InstanceFor(proposed)
	if err != nil {
		r.logger.Error("cannot resolve instance for `%s`: %v", proposed, err)
		return Resolution{
			Next:      current,
			Outcome:   OutcomeRejected,
			Attempted: proposed,
			Details:   err.Error(),
		}
	}
	r.logger.Debug("resolved `%s` --%s--> `%s`", from, evt.Command, proposed)
	return Resolution{Next: next, Outcome: OutcomeAccepted, Attempted: proposed}
}

// SetLogLevel implements the log.Loggable interface.
func (r *MediatedResolver) SetLogLevel(level log.LogLevel) {
	r.logger.Level = level
}
