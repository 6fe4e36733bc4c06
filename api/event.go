/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/massenz/slf4go/logging"
)

var (
	// Logger is made accessible so that its `Level` can be changed,
	// or muted entirely during testing.
	Logger = log.NewLog("fsm")

	UnknownCommandError = fmt.Errorf("command is not one of the known commands")
	MissingMachineError = fmt.Errorf("event must always have a destination machine")
)

// StimulusEvent is one discrete trigger delivered to the engine: a command tag
// plus an optional opaque payload. It is immutable once constructed; one event
// corresponds to exactly one handled invocation, after which it is discarded.
type StimulusEvent struct {
	EventId   string    `json:"event_id"`
	Command   Command   `json:"command"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStimulusEvent(cmd Command) StimulusEvent {
	return StimulusEvent{
		EventId:   uuid.NewString(),
		Command:   cmd,
		Timestamp: time.Now(),
	}
}

func NewStimulusEventWithPayload(cmd Command, payload any) StimulusEvent {
	evt := NewStimulusEvent(cmd)
	evt.Payload = payload
	return evt
}

// UpdateEvent adds the ID and timestamp to the event, if not already set.
func UpdateEvent(event *StimulusEvent) {
	if event.EventId == "" {
		event.EventId = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
}

func (e StimulusEvent) String() string {
	s, err := json.Marshal(e)
	if err != nil {
		return err.Error()
	}
	return string(s)
}

// EventRequest is the internal representation of a StimulusEvent addressed to
// one machine, as carried on the events channel.
type EventRequest struct {
	MachineId string        `json:"machine_id"`
	Event     StimulusEvent `json:"event"`
}

// EventResponse carries the outcome of one handled event back to the host:
// the Diagnostic the engine recorded for it.
type EventResponse struct {
	EventId string     `json:"event_id"`
	Outcome Diagnostic `json:"outcome"`
}

func (r *EventResponse) String() string {
	s, err := json.Marshal(*r)
	if err != nil {
		return err.Error()
	}
	return string(s)
}
