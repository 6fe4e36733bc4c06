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
	"os"

	"gopkg.in/yaml.v3"
)

var (
	MissingNameConfigurationError = fmt.Errorf(
		"configuration must always specify a name (and optionally a version)")
	MissingStatesConfigurationError = fmt.Errorf(
		"configuration must always specify at least one state")
	EmptyStartingStateConfigurationError = fmt.Errorf("the StartingState must be non-empty")
	MismatchStartingStateConfigurationError = fmt.Errorf(
		"the StartingState must be one of the possible states")
	UnknownStateConfigurationError     = "state %s is not one of the known identities"
	UnknownCommandConfigurationError   = "transition event %s is not one of the known commands"
	UnreachableStateConfigurationError = "state %s is not used in any of the transitions"
)

// FromFile reads a Configuration from a YAML file and validates it.
func FromFile(path string) (*Configuration, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var config Configuration
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return nil, err
	}
	if err := CheckValid(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckValid will validate that there is at least one state, that all states
// and commands belong to the known closed sets, that the starting state is one
// of the possible states and, for every state, that it appears in at least one
// transition.
func CheckValid(c *Configuration) error {
	if c.Name == "" {
		return MissingNameConfigurationError
	}
	if len(c.States) == 0 {
		return MissingStatesConfigurationError
	}
	if c.StartingState == "" {
		return EmptyStartingStateConfigurationError
	}
	if !c.HasState(c.StartingState) {
		return MismatchStartingStateConfigurationError
	}
	for _, s := range c.States {
		if !s.Known() {
			return fmt.Errorf(UnknownStateConfigurationError, s)
		}
	}
	for _, t := range c.Transitions {
		if !t.Event.Known() {
			return fmt.Errorf(UnknownCommandConfigurationError, t.Event)
		}
	}
	for _, s := range c.States {
		found := false
		for _, t := range c.Transitions {
			if s == t.From || s == t.To {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(UnreachableStateConfigurationError, s)
		}
	}
	return nil
}
