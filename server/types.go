/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package server

import (
	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/storage"
)

const (
	ContentType     = "Content-Type"
	ApplicationJson = "application/json"
)

// MessageResponse is returned when a more appropriate response is not available.
type MessageResponse struct {
	Msg   interface{} `json:"message,omitempty"`
	Error string      `json:"error,omitempty"`
}

// MachineResponse is returned by a GET on a machine: its stored snapshot plus
// the recent resolution diagnostics from the live Context.
type MachineResponse struct {
	ID          string            `json:"id"`
	Snapshot    *storage.Snapshot `json:"snapshot"`
	Diagnostics []api.Diagnostic  `json:"diagnostics,omitempty"`
}

// EventRequestBody is the payload for injecting one stimulus event; the event
// ID is generated server-side and returned.
type EventRequestBody struct {
	Command string `json:"command"`
	Payload any    `json:"payload,omitempty"`
}

// EventAcceptedResponse acknowledges an enqueued event; the outcome is
// available later via the outcome endpoint.
type EventAcceptedResponse struct {
	EventId   string `json:"event_id"`
	MachineId string `json:"machine_id"`
}

// OutcomeResponse carries the stored Diagnostic for an event.
type OutcomeResponse struct {
	EventId string          `json:"event_id"`
	Outcome *api.Diagnostic `json:"outcome"`
}
