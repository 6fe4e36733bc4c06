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

// EmbeddedResolver delegates the next-state computation to the current state
// itself. There is no central table and no validation step: legality is
// whatever each state's declared edges encode, and an event with no mapped
// successor is an accepted self-loop, not an error. The trade-off is
// deliberate: simpler resolution, but the transition graph is scattered across
// the states and cannot be audited at one call site.
type EmbeddedResolver struct {
	logger   *log.Log
	registry *Registry
}

func NewEmbeddedResolver(registry *Registry) *EmbeddedResolver {
	return &EmbeddedResolver{
		logger:   log.NewLog("resolver.embedded"),
		registry: registry,
	}
}

func (r *EmbeddedResolver) Terminal(id api.StateIdentity) bool {
	s, err := r.registry.InstanceFor(id)
	if err != nil {
		return false
	}
	es, ok := s.(EmbeddedState)
	return ok && len(es.Successors()) == 0
}

func (r *EmbeddedResolver) Resolve(current State, evt api.StimulusEvent) Resolution {
	es, ok := current.(EmbeddedState)
	if !ok {
		details := fmt.Sprintf("state `%s` does not carry embedded successors", current.Identity())
		r.logger.Error(details)
		return Resolution{
			Next:      current,
			Outcome:   OutcomeRejected,
			Attempted: api.StateError,
			Details:   details,
		}
	}
	if len(es.Successors()) == 0 {
		return Resolution{
			Next:      current,
			Outcome:   OutcomeTerminal,
			Attempted: current.Identity(),
			Details:   fmt.Sprintf("state `%s` is terminal, event ignored", current.Identity()),
		}
	}
	next := es.NextStateFor(evt)
	r.logger.Debug("resolved `%s` --%s--> `%s`", current.Identity(), evt.Command, next.Identity())
	return Resolution{Next: next, Outcome: OutcomeAccepted, Attempted: next.Identity()}
}

// SetLogLevel implements the log.Loggable interface.
func (r *EmbeddedResolver) SetLogLevel(level log.LogLevel) {
	r.logger.Level = level
}
