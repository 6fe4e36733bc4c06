/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/massenz/fsm-refmodel/api"
)

// EventMessage abstracts away the details of the actual structure of the
// events and the actual message broker implementation. It is the Internal
// Representation (IR) for a stimulus being originated by the `sender` and
// being sent to a `Destination` machine.
type EventMessage struct {
	Sender         string    `json:"sender"`
	Destination    string    `json:"destination"`
	EventId        string    `json:"event_id"`
	Command        string    `json:"command"`
	EventTimestamp time.Time `json:"timestamp"`
}

func (m *EventMessage) String() string {
	s, err := json.Marshal(*m)
	if err != nil {
		return err.Error()
	}
	return string(s)
}

// ToRequest converts the IR into the EventRequest carried on the events
// channel, filling in the event ID and timestamp if the sender omitted them.
func (m *EventMessage) ToRequest() (api.EventRequest, error) {
	if m.Destination == "" {
		return api.EventRequest{}, api.MissingMachineError
	}
	cmd := api.Command(m.Command)
	if !cmd.Known() {
		return api.EventRequest{}, fmt.Errorf("%w: %s", api.UnknownCommandError, m.Command)
	}
	evt := api.StimulusEvent{
		EventId:   m.EventId,
		Command:   cmd,
		Timestamp: m.EventTimestamp,
	}
	api.UpdateEvent(&evt)
	return api.EventRequest{MachineId: m.Destination, Event: evt}, nil
}

// Not really "variables" - but Go is too dumb to figure out they're actually constants.
var (
	// We poll SQS every DefaultPollingInterval seconds
	DefaultPollingInterval, _ = time.ParseDuration("5s")

	// DefaultVisibilityTimeout sets how long SQS will wait for the subscriber
	// to remove the message from the queue.
	DefaultVisibilityTimeout, _ = time.ParseDuration("5s")
)
