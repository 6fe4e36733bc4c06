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
	"fmt"
	"time"

	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
	"github.com/massenz/fsm-refmodel/metrics"
	"github.com/massenz/fsm-refmodel/storage"
)

type ListenerOptions struct {
	EventsChannel        <-chan api.EventRequest
	NotificationsChannel chan<- api.EventResponse
	Store                storage.StoreManager
	Machines             *machine.Fleet
}

// EventsListener drains the events channel and delivers each request to its
// destination Context. The single ListenForMessages goroutine is what
// serializes delivery per Context: the engine's ordering contract relies on
// this, not on internal locking.
type EventsListener struct {
	logger        *log.Log
	events        <-chan api.EventRequest
	notifications chan<- api.EventResponse
	store         storage.StoreManager
	machines      *machine.Fleet
}

func NewEventsListener(options *ListenerOptions) *EventsListener {
	return &EventsListener{
		logger:        log.NewLog("Listener"),
		events:        options.EventsChannel,
		notifications: options.NotificationsChannel,
		store:         options.Store,
		machines:      options.Machines,
	}
}

// SetLogLevel to implement the log.Loggable interface.
func (listener *EventsListener) SetLogLevel(level log.LogLevel) {
	listener.logger.Level = level
}

func (listener *EventsListener) PostNotificationAndReportOutcome(response *api.EventResponse) {
	if response.Outcome.Kind != api.TransitionAccepted {
		listener.logger.Error("[Event ID: %s]: %s", response.EventId, response.Outcome.Details)
	}
	if listener.notifications != nil {
		listener.logger.Debug("Posting notification: %v", response.EventId)
		listener.notifications <- *response
	}
	listener.logger.Debug("Reporting outcome: %v", response.EventId)
	if err := listener.store.AddEventOutcome(response.EventId, &response.Outcome,
		storage.NeverExpire); err != nil {
		listener.logger.Error("could not add outcome to store: %v", err)
	}
}

func (listener *EventsListener) ListenForMessages() {
	listener.logger.Info("Events message listener started")
	for request := range listener.events {
		listener.process(request)
	}
	listener.logger.Info("Events message listener exiting")
}

func (listener *EventsListener) process(request api.EventRequest) {
	listener.logger.Debug("Received request %s", request.Event.String())
	metrics.EventsReceived.WithLabelValues(request.MachineId).Inc()

	if request.MachineId == "" {
		listener.PostNotificationAndReportOutcome(makeResponse(&request,
			api.MalformedRequest, "no destination machine specified"))
		return
	}
	ctx, ok := listener.machines.Lookup(request.MachineId)
	if !ok {
		listener.PostNotificationAndReportOutcome(makeResponse(&request,
			api.MachineNotFound,
			fmt.Sprintf("machine [%s] could not be found", request.MachineId)))
		return
	}
	evt := request.Event
	api.UpdateEvent(&evt)
	if err := ctx.Handle(evt); err != nil {
		// Cannot happen from this goroutine in normal operation, as the
		// listener is the single delivery point; surfaced regardless.
		listener.PostNotificationAndReportOutcome(makeResponse(&request,
			api.RequestRejected,
			fmt.Sprintf("event [%s] could not be processed: %v", evt.EventId, err)))
		return
	}
	outcome, _ := ctx.Diagnostics().Last()
	metrics.Resolutions.WithLabelValues(request.MachineId, string(outcome.Kind)).Inc()
	listener.logger.Info("Event `%s` resolved for machine [%s]: %s (state: %s)",
		evt.Command, request.MachineId, outcome.Kind, ctx.CurrentIdentity())

	if err := listener.store.PutSnapshot(ctx.ID(), &storage.Snapshot{
		ID:        ctx.ID(),
		ConfigId:  ctx.ConfigID(),
		State:     ctx.CurrentIdentity(),
		Previous:  ctx.PreviousIdentity(),
		UpdatedAt: time.Now(),
	}); err != nil {
		listener.PostNotificationAndReportOutcome(makeResponse(&request,
			api.RequestRejected,
			fmt.Sprintf("could not update machine [%s] in store: %v", request.MachineId, err)))
		return
	}
	listener.PostNotificationAndReportOutcome(&api.EventResponse{
		EventId: evt.EventId,
		Outcome: outcome,
	})
}

func makeResponse(request *api.EventRequest, kind api.DiagnosticKind,
	details string) *api.EventResponse {
	return &api.EventResponse{
		EventId: request.Event.EventId,
		Outcome: api.Diagnostic{
			Kind:      kind,
			MachineId: request.MachineId,
			Command:   request.Event.Command,
			EventId:   request.Event.EventId,
			Details:   details,
			Timestamp: time.Now(),
		},
	}
}
