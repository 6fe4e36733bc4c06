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

	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
)

var (
	// ErrUnregisteredState indicates an assembly bug, not a runtime data
	// error: the engine must not run with a missing state.
	ErrUnregisteredState = fmt.Errorf("no State constructor registered for identity")

	ErrNilState = fmt.Errorf("State constructor returned nil for identity")
)

type Constructor func() State

// Registry hands out the shared State instance for each identity,
// constructing it lazily exactly once. Lookups of an identity with no
// registered constructor fail, and must abort assembly.
type Registry struct {
	logger    *log.Log
	mux       sync.Mutex
	ctors     map[api.StateIdentity]Constructor
	instances map[api.StateIdentity]State
}

func NewRegistry() *Registry {
	return &Registry{
		logger:    log.NewLog("registry"),
		ctors:     make(map[api.StateIdentity]Constructor),
		instances: make(map[api.StateIdentity]State),
	}
}

// Register binds a constructor to an identity. Registration is one-time host
// wiring and must complete before the first InstanceFor call for `id`.
func (r *Registry) Register(id api.StateIdentity, ctor Constructor) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.logger.Debug("registering constructor for `%s`", id)
	r.ctors[id] = ctor
}

// InstanceFor returns the shared instance for `id`, constructing it on first
// use; subsequent calls return the same reference. Construction is guarded so
// two first-time lookups cannot race to build two instances.
func (r *Registry) InstanceFor(id api.StateIdentity) (State, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if s, ok := r.instances[id]; ok {
		return s, nil
	}
	ctor, ok := r.ctors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredState, id)
	}
	s := ctor()
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilState, id)
	}
	r.logger.Debug("constructed shared instance for `%s`", id)
	r.instances[id] = s
	return s, nil
}

// Instantiate eagerly constructs the instances for all the given identities,
// failing fast on the first missing constructor. Assembly code uses it so that
// registration bugs surface before the first event is handled.
func (r *Registry) Instantiate(ids ...api.StateIdentity) error {
	for _, id := range ids {
		if _, err := r.InstanceFor(id); err != nil {
			return err
		}
	}
	return nil
}

// SetLogLevel implements the log.Loggable interface.
func (r *Registry) SetLogLevel(level log.LogLevel) {
	r.logger.Level = level
}
