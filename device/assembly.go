/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package device

import (
	"fmt"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

// Strategy selects how transitions are resolved for an assembled machine.
type Strategy string

const (
	Mediated Strategy = "mediated"
	Embedded Strategy = "embedded"
)

// DefaultConfiguration returns the reference transition graph:
//
//	Init --Start--> Run
//	Run  --Stop--> Idle, Run --Reset--> Init
//	Run  --Sleep--> Sleep, Sleep --Wake--> Run
//	Idle --Start--> Run
//	Run  --Halt--> End (terminal)
func DefaultConfiguration() *machine.Configuration {
	return &machine.Configuration{
		Name:    "device",
		Version: "v1",
		States: []api.StateIdentity{
			api.StateInit, api.StateRun, api.StateIdle, api.StateSleep, api.StateEnd,
		},
		StartingState: api.StateInit,
		Transitions: []machine.Transition{
			{From: api.StateInit, To: api.StateRun, Event: api.CmdStart},
			{From: api.StateRun, To: api.StateIdle, Event: api.CmdStop},
			{From: api.StateRun, To: api.StateInit, Event: api.CmdReset},
			{From: api.StateRun, To: api.StateSleep, Event: api.CmdSleep},
			{From: api.StateSleep, To: api.StateRun, Event: api.CmdWake},
			{From: api.StateIdle, To: api.StateRun, Event: api.CmdStart},
			{From: api.StateRun, To: api.StateEnd, Event: api.CmdHalt},
		},
	}
}

// NewRegistry registers a constructor for every state in the Configuration,
// handing each one the successor edge list it needs under the Embedded
// strategy.
func NewRegistry(cfg *machine.Configuration) *machine.Registry {
	registry := machine.NewRegistry()
	for _, id := range cfg.States {
		id := id
		registry.Register(id, func() machine.State {
			return newState(id, cfg.Edges(id), registry)
		})
	}
	return registry
}

func newState(id api.StateIdentity, edges map[api.Command]api.StateIdentity,
	registry *machine.Registry) machine.State {
	base := deviceState{id: id, edges: edges, registry: registry}
	switch id {
	case api.StateInit:
		s := &initState{base}
		s.self = s
		return s
	case api.StateRun:
		s := &runState{base}
		s.self = s
		return s
	case api.StateIdle:
		s := &idleState{base}
		s.self = s
		return s
	case api.StateSleep:
		s := &sleepState{base}
		s.self = s
		return s
	case api.StateEnd:
		s := &endState{base}
		s.self = s
		return s
	}
	return nil
}

// Assemble validates the Configuration and builds a ready-to-run Context for
// the given machine id. All states are constructed eagerly, so a registration
// bug aborts here rather than surfacing mid-run; on error no Context is
// returned.
func Assemble(id string, cfg *machine.Configuration, strategy Strategy) (*machine.Context, error) {
	if err := machine.CheckValid(cfg); err != nil {
		return nil, err
	}
	registry := NewRegistry(cfg)
	if err := registry.Instantiate(cfg.States...); err != nil {
		return nil, err
	}
	var resolver machine.Resolver
	switch strategy {
	case Mediated, "":
		resolver = machine.MediatedResolverFromConfiguration(cfg, registry)
	case Embedded:
		resolver = machine.NewEmbeddedResolver(registry)
	default:
		return nil, fmt.Errorf("unknown resolution strategy `%s`", strategy)
	}
	initial, err := registry.InstanceFor(cfg.StartingState)
	if err != nil {
		return nil, err
	}
	return machine.NewContext(id, cfg.VersionID(), initial, resolver,
		api.NewDiagnosticLog()), nil
}
